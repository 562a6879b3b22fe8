package engine

import "github.com/iliyamo/venue-ticketing/internal/model"

// NormalizeProject applies the fixed post-import pipeline to a project:
// the sequence config's derived fields first, then price colors, then
// labels, then missing ticket numbers.  The shape derivation must come
// before the ticket pass so that a legacy bare-template config reports
// its real remaining capacity instead of zero; the labels must come
// before the tickets because sequence assignment sorts seats by their
// label numbers.  The pipeline is idempotent and is run for every
// project at startup load and after any bulk import.
func NormalizeProject(p *model.Project) error {
    deriveSequenceShape(&p.Ticketing)
    RefreshPriceColors(p)
    AssignLabels(p)
    return bulkEnsureTickets(p)
}
