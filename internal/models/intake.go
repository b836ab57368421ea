package models

// BatchIntake collects a batch's uploads in order. Files refused before
// screening become failed items at their upload position.
type BatchIntake struct {
	items     []BatchItem
	docs      []ResumeDocument
	positions []int
}

func (b *BatchIntake) Accept(doc ResumeDocument) {
	b.positions = append(b.positions, len(b.items))
	b.docs = append(b.docs, doc)
	b.items = append(b.items, BatchItem{Filename: doc.Filename})
}

func (b *BatchIntake) Reject(filename string, err error) {
	b.items = append(b.items, BatchItem{
		Filename:  filename,
		Error:     err.Error(),
		ErrorKind: ErrorKindInvalid,
	})
}

// Documents returns the accepted documents, to be screened in this order.
func (b *BatchIntake) Documents() []ResumeDocument {
	return b.docs
}

func (b *BatchIntake) Len() int {
	return len(b.items)
}

// Merge places the screened items, given in Documents order, back among the
// rejected ones.
func (b *BatchIntake) Merge(screened []BatchItem) []BatchItem {
	items := append([]BatchItem(nil), b.items...)
	for i, item := range screened {
		if i < len(b.positions) {
			items[b.positions[i]] = item
		}
	}
	return items
}
