// Package gateway wires together the frame source, parser, sequence
// tracker, stats aggregator, event bus, structured logger and optional
// persistence/sink subsystems into the single ingest loop described by
// the original gateway orchestrator: record-before-filter, parse,
// classify, then dispatch a msg-type-specific event.
package gateway

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"sentrygate/cmdhandler"
	"sentrygate/cmdserver"
	"sentrygate/eventarchive"
	"sentrygate/eventbus"
	"sentrygate/frame"
	"sentrygate/framesource"
	"sentrygate/logx"
	"sentrygate/mqttsink"
	"sentrygate/reclog"
	"sentrygate/replay"
	"sentrygate/seqtrack"
	"sentrygate/sourcestore"
	"sentrygate/stats"
	"sentrygate/wire"
)

// Config controls which optional subsystems the Gateway wires in. A zero
// value runs UDP ingest with CRC checking and nothing else.
type Config struct {
	UDPPort     uint16
	CRCEnabled  bool
	RecordPath  string
	ReplayPath  string
	ReplaySpeed float64

	CommandPort int

	SourceStore      *sourcestore.Store
	SnapshotInterval time.Duration

	Archive *eventarchive.Archive
	MQTT    *mqttsink.Sink

	LogOutput io.Writer
	LogLevel  eventbus.Severity
}

// Gateway is the assembled ingest pipeline plus its command channel.
type Gateway struct {
	cfg Config

	tracker  *seqtrack.Tracker
	stats    *stats.Aggregator
	bus      *eventbus.Bus
	logger   *logx.Logger
	handler  *cmdhandler.Handler
	server   *cmdserver.Server
	recorder *reclog.Recorder

	source    framesource.Source
	replaySrc *replay.Source

	stopCh chan struct{}
}

// statsSourceLister adapts the live stats.Aggregator to cmdhandler's
// SourceLister, preferred over the persisted sourcestore snapshot since
// the in-memory aggregator is always the authority while running (see
// the durability note on sourcestore.Store).
type statsSourceLister struct {
	stats *stats.Aggregator
}

func (l statsSourceLister) ListSources() []cmdhandler.SourceEntry {
	snaps := l.stats.AllSourceSnapshots()
	out := make([]cmdhandler.SourceEntry, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, cmdhandler.SourceEntry{
			SrcID:      s.SrcID,
			RxCount:    s.RxCount,
			Gaps:       s.Gaps,
			Reorders:   s.Reorders,
			Duplicates: s.Duplicates,
			Malformed:  s.Malformed,
			LastSeq:    s.LastSeq,
		})
	}
	return out
}

// New assembles a Gateway from cfg. It does not bind any socket or start
// any goroutine; call Run for that.
func New(cfg Config) *Gateway {
	if cfg.LogLevel == 0 && cfg.LogOutput == nil {
		cfg.LogLevel = eventbus.SeverityInfo
	}

	g := &Gateway{
		cfg:     cfg,
		tracker: seqtrack.New(),
		stats:   stats.New(),
		bus:     eventbus.New(),
		recorder: reclog.New(),
		stopCh:  make(chan struct{}),
	}

	out := cfg.LogOutput
	if out == nil {
		out = os.Stdout
	}
	g.logger = logx.New(out, cfg.LogLevel)

	var eventSource cmdhandler.EventSource
	if cfg.Archive != nil {
		eventSource = cfg.Archive
	}
	var sourceLister cmdhandler.SourceLister = statsSourceLister{stats: g.stats}

	g.handler = cmdhandler.New(g.stats, g.logger, eventSource, sourceLister)
	g.handler.SetCrcEnabled(cfg.CRCEnabled)

	if cfg.Archive != nil {
		g.bus.SubscribeAll(func(r eventbus.Record) { cfg.Archive.Enqueue(r) })
	}
	if cfg.MQTT != nil {
		g.bus.SubscribeAll(func(r eventbus.Record) { cfg.MQTT.Publish(r) })
	}

	return g
}

// Run opens the frame source (and recorder, if configured), binds the
// command channel, and processes frames until the context is cancelled or
// Stop is called. It returns the first subsystem error, or nil on a clean
// stop.
func (g *Gateway) Run(ctx context.Context) error {
	if err := g.openSource(); err != nil {
		return err
	}
	defer g.source.Close()

	if g.cfg.SourceStore != nil {
		g.loadPersistedSources()
	}

	if g.cfg.RecordPath != "" {
		if err := g.recorder.Open(g.cfg.RecordPath); err != nil {
			g.publish(eventbus.EvtConfigChange, eventbus.CategoryControl, eventbus.SeverityWarn,
				fmt.Sprintf("record open failed: %v", err))
		}
	}
	defer g.recorder.Close()

	g.server = cmdserver.New(uint16(g.cfg.CommandPort), g.handler)
	if err := g.server.Start(); err != nil {
		return fmt.Errorf("gateway: start command server: %w", err)
	}
	defer g.server.Stop()

	g.publish(eventbus.EvtConfigChange, eventbus.CategoryControl, eventbus.SeverityInfo,
		fmt.Sprintf("gateway started on udp_port=%d command_port=%d", g.cfg.UDPPort, g.cfg.CommandPort))

	grp, grpCtx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		g.ingestLoop(grpCtx)
		return nil
	})

	if g.cfg.SourceStore != nil && g.cfg.SnapshotInterval > 0 {
		grp.Go(func() error {
			g.snapshotLoop(grpCtx)
			return nil
		})
	}

	err := grp.Wait()

	g.publish(eventbus.EvtConfigChange, eventbus.CategoryControl, eventbus.SeverityInfo, "gateway stopped")
	return err
}

// Stop requests the ingest loop and any background loops to exit. It
// returns immediately; Run returns once every loop has observed the
// request.
func (g *Gateway) Stop() {
	select {
	case <-g.stopCh:
	default:
		close(g.stopCh)
	}
}

func (g *Gateway) openSource() error {
	if g.cfg.ReplayPath != "" {
		rs := replay.New()
		if err := rs.Open(g.cfg.ReplayPath); err != nil {
			return fmt.Errorf("gateway: open replay file %s: %w", g.cfg.ReplayPath, err)
		}
		rs.SetSpeed(g.cfg.ReplaySpeed)
		g.replaySrc = rs
		g.source = framesource.NewReplayAdapter(rs)
		return nil
	}

	udp := framesource.NewUDPSource()
	if err := udp.Bind(g.cfg.UDPPort); err != nil {
		return fmt.Errorf("gateway: bind udp port %d: %w", g.cfg.UDPPort, err)
	}
	g.source = udp
	return nil
}

func (g *Gateway) ingestLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-g.stopCh:
			return
		default:
		}

		buf, ok := g.source.Receive()
		if !ok {
			if g.source.Done() {
				return
			}
			continue
		}

		rxTimestampNs := uint64(time.Now().UnixNano())
		g.processFrame(buf, rxTimestampNs)
	}
}

func (g *Gateway) snapshotLoop(ctx context.Context) {
	ticker := time.NewTicker(g.cfg.SnapshotInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			g.snapshotAll()
			return
		case <-g.stopCh:
			g.snapshotAll()
			return
		case <-ticker.C:
			g.snapshotAll()
		}
	}
}

// loadPersistedSources restores every snapshot the source store holds into
// the live tracker/stats pair, so a restarted gateway doesn't report a
// spurious FIRST or GAP for a source it has already seen in a prior run.
// This is a durability nicety only: replay determinism is always defined
// over a fresh tracker/stats pair and never depends on this step running.
func (g *Gateway) loadPersistedSources() {
	all, err := g.cfg.SourceStore.All()
	if err != nil {
		g.publish(eventbus.EvtConfigChange, eventbus.CategoryControl, eventbus.SeverityWarn,
			fmt.Sprintf("source store load failed: %v", err))
		return
	}
	for _, s := range all {
		g.stats.Seed(s)
		g.tracker.Seed(s.SrcID, s.LastSeq+1, uint64(1)<<63)
	}
}

func (g *Gateway) snapshotAll() {
	for _, s := range g.stats.AllSourceSnapshots() {
		if err := g.cfg.SourceStore.Put(s); err != nil {
			g.publish(eventbus.EvtConfigChange, eventbus.CategoryControl, eventbus.SeverityWarn,
				fmt.Sprintf("source snapshot failed src_id=%d: %v", s.SrcID, err))
			return
		}
	}
}

// processFrame implements the exact per-frame state machine: record raw
// bytes unconditionally before filtering, parse, classify the sequence
// number, record stats unconditionally once parsed, then dispatch a
// verdict-specific and a msg-type-specific event.
func (g *Gateway) processFrame(buf []byte, rxTimestampNs uint64) {
	if g.cfg.RecordPath != "" {
		g.recorder.Record(rxTimestampNs, buf)
	}

	parsed, perr := frame.Parse(buf, g.handler.CrcEnabled())
	if perr != frame.ErrNone {
		g.stats.RecordMalformed(0)
		if perr == frame.ErrCrcMismatch {
			g.stats.RecordCrcFail(0)
			g.publish(eventbus.EvtCrcFail, eventbus.CategoryNetwork, eventbus.SeverityWarn,
				fmt.Sprintf("error=%s", perr.String()))
		} else {
			g.publish(eventbus.EvtFrameMalformed, eventbus.CategoryNetwork, eventbus.SeverityWarn,
				fmt.Sprintf("error=%s len=%d", perr.String(), len(buf)))
		}
		return
	}

	seqEvent := g.tracker.Track(parsed.Header.SrcID, parsed.Header.Seq)
	g.stats.RecordRx(parsed.Header.SrcID, parsed.Header.Seq, rxTimestampNs)

	switch seqEvent.Verdict {
	case seqtrack.First:
		g.publish(eventbus.EvtSourceOnline, eventbus.CategoryNetwork, eventbus.SeverityInfo,
			fmt.Sprintf("src_id=%d", parsed.Header.SrcID))
	case seqtrack.Gap:
		g.stats.RecordGap(parsed.Header.SrcID, seqEvent.GapSize)
		g.publish(eventbus.EvtSeqGap, eventbus.CategoryNetwork, eventbus.SeverityWarn,
			fmt.Sprintf("src_id=%d expected=%d actual=%d gap=%d",
				parsed.Header.SrcID, seqEvent.Expected, seqEvent.Actual, seqEvent.GapSize))
	case seqtrack.Reorder:
		g.stats.RecordReorder(parsed.Header.SrcID)
		g.publish(eventbus.EvtSeqReorder, eventbus.CategoryNetwork, eventbus.SeverityWarn,
			fmt.Sprintf("src_id=%d expected=%d actual=%d",
				parsed.Header.SrcID, seqEvent.Expected, seqEvent.Actual))
	case seqtrack.Duplicate:
		g.stats.RecordDuplicate(parsed.Header.SrcID)
	case seqtrack.Ok:
	}

	g.dispatchPayload(parsed)
}

func (g *Gateway) dispatchPayload(parsed frame.ParsedFrame) {
	switch parsed.Header.MsgType {
	case wire.MsgTrack:
		if len(parsed.PayloadView) < wire.TrackSize {
			return
		}
		t := wire.DecodeTrack(parsed.PayloadView)
		g.publish(eventbus.EvtTrackUpdate, eventbus.CategoryTracking, eventbus.SeverityDebug,
			fmt.Sprintf("src_id=%d track_id=%d class=%d threat=%d",
				parsed.Header.SrcID, t.TrackID, t.Class, t.Threat))

	case wire.MsgPlot:
		if len(parsed.PayloadView) < wire.PlotSize {
			return
		}
		p := wire.DecodePlot(parsed.PayloadView)
		g.publish(eventbus.EvtTrackNew, eventbus.CategoryTracking, eventbus.SeverityDebug,
			fmt.Sprintf("src_id=%d plot_id=%d range=%dm", parsed.Header.SrcID, p.PlotID, p.RangeM))

	case wire.MsgHeartbeat:
		if len(parsed.PayloadView) < wire.HeartbeatSize {
			return
		}
		h := wire.DecodeHeartbeat(parsed.PayloadView)
		id := eventbus.EvtHeartbeatOK
		sev := eventbus.SeverityDebug
		switch subsystemState(h.State) {
		case subsystemDegraded:
			id, sev = eventbus.EvtHeartbeatDegrade, eventbus.SeverityWarn
		case subsystemError, subsystemOffline:
			id, sev = eventbus.EvtHeartbeatError, eventbus.SeverityAlarm
		}
		g.publish(id, eventbus.CategoryHealth, sev,
			fmt.Sprintf("subsystem=%d state=%d cpu=%d%% mem=%d%%",
				h.SubsystemID, h.State, h.CPUPct, h.MemPct))

	case wire.MsgEngagement:
		if len(parsed.PayloadView) < wire.EngagementSize {
			return
		}
		e := wire.DecodeEngagement(parsed.PayloadView)
		g.publish(eventbus.EvtWeaponStatus, eventbus.CategoryEngagement, eventbus.SeverityInfo,
			fmt.Sprintf("weapon=%d mode=%d track=%d rounds=%d",
				e.WeaponID, e.Mode, e.AssignedTrack, e.RoundsRemaining))
	}
}

type subsystemState uint8

const (
	subsystemOK subsystemState = iota
	subsystemDegraded
	subsystemError
	subsystemOffline
)

func (g *Gateway) publish(id eventbus.ID, cat eventbus.Category, sev eventbus.Severity, detail string) {
	g.logger.Log(sev, cat, id.String(), detail)
	g.bus.Publish(eventbus.Record{
		ID:          id,
		Category:    cat,
		Severity:    sev,
		TimestampNs: uint64(time.Now().UnixNano()),
		Detail:      detail,
	})
}

// Stats exposes the live aggregator for callers that want a final summary
// (e.g. cmd/gatewayd on exit) without going through the command channel.
func (g *Gateway) Stats() *stats.Aggregator {
	return g.stats
}
