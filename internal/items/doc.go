// Package items turns a freeform dictation list into ordered test items.
// A line may carry masked answer spans (**like this**) or hold several
// sentences, in which case it becomes a paragraph read one sentence at a time.
package items
