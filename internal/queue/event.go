// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketIssuedEvent is published when a seat is sold and its ticket
// issued.  It carries enough information for downstream consumers to
// log, notify, or feed analytics without querying the engine.
type TicketIssuedEvent struct {
    ProjectID    uint64 `json:"project_id"`
    ProjectName  string `json:"project_name"`
    Row          int    `json:"row"`
    Col          int    `json:"col"`
    SeatLabel    string `json:"seat_label"`
    TicketNumber string `json:"ticket_number"`
    PriceCents   uint32 `json:"price_cents"`
    HolderID     string `json:"holder_id"`
    IssuedAt     string `json:"issued_at"`
}
