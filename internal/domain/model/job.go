package model

// SubjectJob asks a worker to run stride generation for one subject.
type SubjectJob struct {
	// Index is the subject's position in the sorted subject list; it names
	// the normalized output directory (AB<Index+1>).
	Index   int
	Subject string
}
