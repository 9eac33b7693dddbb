package batch

import "github.com/MrJamesThe3rd/chatledger/internal/record"

// Status is the outcome recorded for a message id in the processed ledger.
type Status string

const (
	StatusSuccess          Status = "SUCCESS"
	StatusFailure          Status = "FAILURE"
	StatusMissingReference Status = "MISSING_REFERENCE"
	StatusAskedForHelp     Status = "ASKED_FOR_HELP"
)

// Processed maps message ids that were already handled to their outcome.
type Processed map[int64]Status

func (p Processed) Has(id int64) bool {
	_, ok := p[id]
	return ok
}

// Outcome is one processed-ledger row.
type Outcome struct {
	MessageID int64
	Status    Status
}

// Buckets holds the results of one batch pass, oldest first. The slices are
// disjoint. Answered holds help requests that already got a reply; they are
// recorded as processed but need no further help message.
type Buckets struct {
	ToUpload         []record.Record
	NewReferences    []*record.Registration
	MissingReference []*record.MissingReference
	FailedToParse    []*record.Unparsed
	HelpRequested    []*record.HelpRequest
	Answered         []*record.HelpRequest
}

// Empty reports whether the pass produced nothing at all.
func (b *Buckets) Empty() bool {
	return len(b.ToUpload) == 0 &&
		len(b.NewReferences) == 0 &&
		len(b.MissingReference) == 0 &&
		len(b.FailedToParse) == 0 &&
		len(b.HelpRequested) == 0 &&
		len(b.Answered) == 0
}

// Succeeded reports whether anything was uploaded or registered.
func (b *Buckets) Succeeded() bool {
	return len(b.ToUpload) > 0 || len(b.NewReferences) > 0
}

// Outcomes lists the processed-ledger rows for every record in the buckets.
// A message with several lines may appear more than once.
func (b *Buckets) Outcomes() []Outcome {
	out := make([]Outcome, 0,
		len(b.ToUpload)+len(b.NewReferences)+len(b.FailedToParse)+len(b.HelpRequested)+len(b.Answered)+len(b.MissingReference))

	for _, r := range b.ToUpload {
		out = append(out, Outcome{MessageID: r.Source().MessageID, Status: StatusSuccess})
	}

	for _, r := range b.NewReferences {
		out = append(out, Outcome{MessageID: r.MessageID, Status: StatusSuccess})
	}

	for _, r := range b.FailedToParse {
		out = append(out, Outcome{MessageID: r.MessageID, Status: StatusFailure})
	}

	for _, r := range b.HelpRequested {
		out = append(out, Outcome{MessageID: r.MessageID, Status: StatusAskedForHelp})
	}

	for _, r := range b.Answered {
		out = append(out, Outcome{MessageID: r.MessageID, Status: StatusAskedForHelp})
	}

	for _, r := range b.MissingReference {
		out = append(out, Outcome{MessageID: r.MessageID, Status: StatusMissingReference})
	}

	return out
}
