// Package broadcast fans project snapshots out to every connected viewer
// of a project.  Mutations publish through a Sink; viewers hold a
// websocket registered with the Hub.  In multi-instance deployments the
// Sink is backed by Redis pub/sub so that viewers connected to any
// instance see every mutation; a single instance can wire the Hub in as
// the Sink directly.
package broadcast

import "github.com/iliyamo/venue-ticketing/internal/model"

// Sink receives one snapshot per accepted mutation of a project.
// Delivery is fire-and-forget, at-most-once per call; the engine neither
// expects nor waits for acknowledgment.
type Sink interface {
    Publish(projectID uint64, snapshot *model.Project)
}
