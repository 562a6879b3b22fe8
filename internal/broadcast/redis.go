package broadcast

import (
    "context"
    "encoding/json"
    "fmt"
    "log"
    "time"

    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/venue-ticketing/internal/model"
)

// channelPattern matches every per-project snapshot channel.
const channelPattern = "project:*"

func channelFor(projectID uint64) string {
    return fmt.Sprintf("project:%d", projectID)
}

// RedisSink publishes project snapshots to a per-project Redis channel.
// Publish failures are logged and dropped: broadcast is at-most-once and
// the next mutation carries a fresh full snapshot anyway.
type RedisSink struct {
    rdb *redis.Client
}

// NewRedisSink returns a sink publishing through the given client.
func NewRedisSink(rdb *redis.Client) *RedisSink { return &RedisSink{rdb: rdb} }

// Publish marshals the snapshot and publishes it to the project's
// channel.
func (s *RedisSink) Publish(projectID uint64, snapshot *model.Project) {
    payload, err := json.Marshal(snapshot)
    if err != nil {
        log.Printf("broadcast: marshal project %d: %v", projectID, err)
        return
    }
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := s.rdb.Publish(ctx, channelFor(projectID), payload).Err(); err != nil {
        log.Printf("broadcast: publish project %d: %v", projectID, err)
    }
}

// Subscribe consumes the snapshot channels and forwards each payload to
// the hub until the context is cancelled.  Run it in its own goroutine.
func Subscribe(ctx context.Context, rdb *redis.Client, hub *Hub) {
    sub := rdb.PSubscribe(ctx, channelPattern)
    defer sub.Close()
    ch := sub.Channel()
    for {
        select {
        case <-ctx.Done():
            return
        case msg, ok := <-ch:
            if !ok {
                return
            }
            var id uint64
            if _, err := fmt.Sscanf(msg.Channel, "project:%d", &id); err != nil {
                continue
            }
            hub.Forward(id, []byte(msg.Payload))
        }
    }
}
