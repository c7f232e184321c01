package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dreamware/worldshard/internal/mesh"
	"github.com/dreamware/worldshard/internal/reducer"
	"github.com/dreamware/worldshard/internal/session"
	"github.com/dreamware/worldshard/internal/store"
	"github.com/dreamware/worldshard/internal/transport"
)

// relay drains the global shard's outbox, resolving DestRegion/
// DestAllOtherRegions against the live RegionConnectionInfo table instead
// of a static peer list — the global shard is where every region
// registers, so it is always the most current source of that mapping.
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

	regions, rerr := session.ListRegions(tx)
	if rerr != nil {
		r.logger.Error("relay: list regions", zap.String("err", rerr.Message))
		return
	}

	for _, row := range pending {
		r.deliver(tx, row.key, row.msg, regions)
	}
	if cerr := tx.Commit(); cerr != nil {
		r.logger.Error("relay: commit", zap.Error(cerr))
	}
}

func (r *relay) deliver(tx store.Tx, key []byte, m mesh.Message, regions []session.RegionConnectionInfo) {
	urls := r.resolve(m.Dest, regions)
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
		ctx := reducer.NewCtx(tx, 0, true, reducer.RoleRelay, now, uint64(now.UnixNano()))
		if perr := mesh.ProcessReply(ctx, reply); perr != nil {
			r.logger.Error("relay: process reply", zap.String("kind", m.Kind), zap.String("err", perr.Message))
		}
	}
	if derr := mesh.OutboxTable.Delete(tx, key); derr != nil {
		r.logger.Error("relay: delete outbox row", zap.Uint64("message_id", m.MessageID), zap.Error(derr))
	}
}

func (r *relay) resolve(dest mesh.Destination, regions []session.RegionConnectionInfo) []string {
	switch dest.Kind {
	case mesh.DestRegion:
		for _, reg := range regions {
			if reg.RegionID == dest.RegionID {
				return []string{reg.Addr}
			}
		}
		return nil
	case mesh.DestAllOtherRegions, mesh.DestGlobalAndAllOtherRegion:
		urls := make([]string, 0, len(regions))
		for _, reg := range regions {
			urls = append(urls, reg.Addr)
		}
		return urls
	default:
		// DestGlobal never appears in the global shard's own outbox: a
		// message already at the global shard addressed to itself is a
		// caller bug, not a delivery case this relay handles.
		return nil
	}
}
