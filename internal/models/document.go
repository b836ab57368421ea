package models

// ResumeDocument is one uploaded resume. It only lives for the duration of
// a screening run.
type ResumeDocument struct {
	Filename string `json:"filename"`
	Content  []byte `json:"-"`
	Text     string `json:"-"`
}
