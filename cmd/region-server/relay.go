package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dreamware/worldshard/internal/mesh"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/store"
	"github.com/dreamware/worldshard/internal/transport"
)

// relay drains this region's mesh outbox and delivers each row to its
// destination shard's /mesh/inbound endpoint, then runs the returned
// reply against the sender's own SenderResultHandler — the external
// "relay (external to this package)" internal/mesh.Send's doc comment
// calls for.
type relay struct {
	engine     store.Engine
	cfg        config
	logger     *zap.Logger
	httpClient func(ctx context.Context, url string, body, out any) error
}

func newRelay(engine store.Engine, cfg config, logger *zap.Logger) *relay {
	return &relay{engine: engine, cfg: cfg, logger: logger, httpClient: transport.PostJSON}
}

func (r *relay) run(stop <-chan struct{}) {
	ticker := time.NewTicker(r.cfg.RelayInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.drain()
		}
	}
}

func (r *relay) drain() {
	tx, err := r.engine.Begin(true)
	if err != nil {
		r.logger.Error("relay: open tx", zap.Error(err))
		return
	}
	defer tx.Rollback()

	type outboxRow struct {
		key []byte
		msg mesh.Message
	}
	var pending []outboxRow
	iterErr := mesh.OutboxTable.Iterate(tx, func(key []byte, m mesh.Message) error {
		pending = append(pending, outboxRow{key: append([]byte(nil), key...), msg: m})
		return nil
	})
	if iterErr != nil {
		r.logger.Error("relay: iterate outbox", zap.Error(iterErr))
		return
	}
	if len(pending) == 0 {
		return
	}

	for _, row := range pending {
		r.deliver(tx, row.key, row.msg)
	}
	if cerr := tx.Commit(); cerr != nil {
		r.logger.Error("relay: commit", zap.Error(cerr))
	}
}

// deliver POSTs m to every URL its Destination resolves to and runs the
// sender-side result handler against each reply, then removes m from the
// outbox regardless of delivery outcome — a delivery failure is logged
// and the message is not retried.
func (r *relay) deliver(tx store.Tx, key []byte, m mesh.Message) {
	urls := r.resolve(m.Dest)
	now := time.Now().UTC()
	for _, url := range urls {
		var reply mesh.Message
		ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := r.httpClient(ctxTimeout, url+"/mesh/inbound", m, &reply)
		cancel()
		if err != nil {
			r.logger.Error("relay: deliver", zap.String("url", url), zap.String("kind", m.Kind), zap.Error(err))
			continue
		}
		ctx := reducer.NewCtx(tx, serverIdentity(r.cfg.RegionIndex), true, reducer.RoleRelay, now, uint64(now.UnixNano()))
		if perr := mesh.ProcessReply(ctx, reply); perr != nil {
			r.logger.Error("relay: process reply", zap.String("kind", m.Kind), zap.String("err", perr.Message))
		}
	}
	if derr := mesh.OutboxTable.Delete(tx, key); derr != nil {
		r.logger.Error("relay: delete outbox row", zap.Uint64("message_id", m.MessageID), zap.Error(derr))
	}
}

// resolve expands a Destination into the base URLs of every shard it
// targets, per §4.5's four selector shapes.
func (r *relay) resolve(dest mesh.Destination) []string {
	switch dest.Kind {
	case mesh.DestRegion:
		if url, ok := r.cfg.Peers[dest.RegionID]; ok {
			return []string{url}
		}
		return nil
	case mesh.DestGlobal:
		return []string{r.cfg.GlobalAddr}
	case mesh.DestAllOtherRegions:
		return r.allPeerURLs()
	case mesh.DestGlobalAndAllOtherRegion:
		return append([]string{r.cfg.GlobalAddr}, r.allPeerURLs()...)
	default:
		return nil
	}
}

func (r *relay) allPeerURLs() []string {
	urls := make([]string, 0, len(r.cfg.Peers))
	for idx, url := range r.cfg.Peers {
		if idx == r.cfg.RegionIndex {
			continue
		}
		urls = append(urls, url)
	}
	return urls
}
