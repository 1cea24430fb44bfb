// Package lifecycle implements the receiver process's startup and shutdown
// sequence: build the parameter store, open the SDR, wire the DSP graph,
// spawn the UI subprocess, start the audio stream, and tear all of it down
// idempotently on signal.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/n7cdr/pocketwave/internal/audiobridge"
	"github.com/n7cdr/pocketwave/internal/dspstage"
	"github.com/n7cdr/pocketwave/internal/ipc"
	"github.com/n7cdr/pocketwave/internal/param"
	"github.com/n7cdr/pocketwave/internal/pipeline"
	"github.com/n7cdr/pocketwave/internal/sdr"
)

// retuneInterval bounds how quickly a UI-driven frequency change reaches
// the hardware: the pipeline has no per-mutation callback, so the Numeric
// cell is polled instead, matching §5's "parameter reads see current value
// at read time, no packet-wide snapshot" contract.
const retuneInterval = 50 * time.Millisecond

// Options are the receiver's startup-only settings: things that never
// live in the param.Store because no screen mutates them after launch.
type Options struct {
	Device       string
	HamlibModel  int
	UIBinaryPath string
	FilterOrder  int
	AudioBlockSz int
	BridgeDepth  int
}

// Receiver owns every long-lived resource the receiver process holds:
// the SDR front end, the DSP graph, the audio stream, the UI subprocess,
// and the two IPC transports connecting to it.
type Receiver struct {
	logger *log.Logger
	store  *param.Store

	tuner  *sdr.HamlibTuner
	source *sdr.RawSource

	graph     *pipeline.Graph
	scheduler *pipeline.Scheduler
	stopFlag  *pipeline.StopFlag

	bridge      *audiobridge.Bridge
	audioStream *audiobridge.Stream

	uiCmd   *exec.Cmd
	pub     *ipc.Publisher
	opSub   *ipc.OpSubscriber
	demod   *dspstage.DemodManager
	filter  *dspstage.Filter

	schedErr chan error
	wg       sync.WaitGroup
	shutdown sync.Once
}

// Start builds and starts every component of the receiver process. On any
// failure it tears down whatever was already opened before returning the
// error, since a half-started receiver must never leak a GPIO line,
// SDR handle, or UI subprocess.
func Start(ctx context.Context, logger *log.Logger, store *param.Store, opts Options) (*Receiver, error) {
	r := &Receiver{
		logger:   logger,
		store:    store,
		stopFlag: pipeline.NewStopFlag(),
		schedErr: make(chan error, 1),
	}

	tuner, err := sdr.OpenHamlibTuner(opts.HamlibModel, opts.Device, store.Numeric("sdr_fs").Get())
	if err != nil {
		return nil, fmt.Errorf("lifecycle: opening sdr: %w", err)
	}
	r.tuner = tuner

	reader := sdr.NewIQReader(os.Stdin)
	r.source = sdr.NewRawSource(tuner, reader)
	store.Register("sdr_tuner", param.NewDevice(tuner))

	r.demod = dspstage.NewDemodManager()
	store.Register("demod_manager", param.NewDevice(r.demod))

	r.bridge = audiobridge.NewBridge(opts.BridgeDepth)

	if err := r.startUI(opts.UIBinaryPath); err != nil {
		r.tuner.Close()
		return nil, fmt.Errorf("lifecycle: starting ui: %w", err)
	}

	if err := r.buildGraph(opts.FilterOrder); err != nil {
		r.teardownUI()
		r.tuner.Close()
		return nil, fmt.Errorf("lifecycle: building dsp graph: %w", err)
	}

	audioStream, err := audiobridge.OpenStream(r.bridge, store.Numeric("spkr_fs").Get(), opts.AudioBlockSz)
	if err != nil {
		r.teardownUI()
		r.tuner.Close()
		return nil, fmt.Errorf("lifecycle: opening audio stream: %w", err)
	}
	r.audioStream = audioStream
	if err := r.audioStream.Start(); err != nil {
		r.audioStream.Close()
		r.teardownUI()
		r.tuner.Close()
		return nil, fmt.Errorf("lifecycle: starting audio stream: %w", err)
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.schedErr <- r.scheduler.Run(ctx)
	}()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		retuneLoop(r.stopFlag.Done(), store.Numeric("sdr_cf"), store.Numeric("sdr_dig_bw"), store.Numeric("sdr_fs"),
			store.Device("sdr_tuner"), opts.FilterOrder, r.filter)
	}()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.pumpOps()
	}()

	return r, nil
}

func (r *Receiver) startUI(binPath string) error {
	cmd := exec.Command(binPath)
	cmd.Stderr = os.Stderr

	toUI, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	fromUI, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}

	r.uiCmd = cmd
	r.pub = ipc.NewPublisher(toUI)
	r.opSub = ipc.NewOpSubscriber(fromUI)
	return nil
}

func (r *Receiver) teardownUI() {
	if r.pub != nil {
		r.pub.Close()
	}
	if r.uiCmd != nil && r.uiCmd.Process != nil {
		r.uiCmd.Process.Kill()
		r.uiCmd.Wait()
	}
}

func (r *Receiver) buildGraph(filterOrder int) error {
	store := r.store
	bw := store.Numeric("sdr_dig_bw").Get()
	fs := store.Numeric("sdr_fs").Get()
	b, a := dspstage.DesignButterworthLowpass(filterOrder, bw/2, fs)

	newMeta := func() pipeline.Meta {
		m := pipeline.NewMeta()
		m.SetTimestamp(time.Now())
		return m
	}

	r.filter = dspstage.NewFilter(b, a)

	g := pipeline.NewGraph()
	nodes := []*pipeline.Node{
		pipeline.NewSourceNode(dspstage.NewProvideRawRF(r.source, int(store.Numeric("sdr_chunk_sz").Get()), newMeta)),
		pipeline.NewWindowNode(dspstage.CalcDecibels{}),
		pipeline.NewWindowNode(dspstage.NewApplySquelch(store.Numeric("sdr_squelch"))),
		pipeline.NewWorkerNode(dspstage.NewDemodulateRF(r.demod)),
		pipeline.NewWorkerNode(r.filter),
		pipeline.NewWorkerNode(dspstage.NewDownsample(fs, store.Numeric("spkr_fs").Get())),
		pipeline.NewFanWorkerNode(dspstage.NewRechunkArray(int(store.Numeric("spkr_chunk_sz").Get()))),
		pipeline.NewWorkerNode(dspstage.NewAdjustVolume(store.Numeric("spkr_volume"))),
		pipeline.NewWorkerNode(dspstage.ReshapeArray{}),
		pipeline.NewWindowNode(dspstage.NewAudioTailSink(r.bridge)),
		pipeline.NewWindowNode(dspstage.NewHWSnapshotSink(snapshotPublisher{pub: r.pub, store: store, demod: r.demod, startUnix: time.Now().Unix()})),
		pipeline.NewEndpointNode(dspstage.DrainEndpoint{}),
	}
	if err := g.AddLinearChain(nodes...); err != nil {
		return err
	}
	r.graph = g
	r.scheduler = pipeline.NewScheduler(g, r.stopFlag)
	return nil
}

// pumpOps reads ParamOps sent by the UI process and applies them to the
// store until the UI's stdout closes (normally, on UI shutdown).
func (r *Receiver) pumpOps() {
	for {
		op, err := r.opSub.Next()
		if err != nil {
			return
		}
		if err := ipc.ApplyOp(r.store, op); err != nil {
			r.logger.Error("applying param op", "name", op.Name, "kind", op.Kind, "err", err)
		}
	}
}

// retuneLoop is the one place live Numeric-cell changes reach hardware and
// DSP state the pipeline graph itself never re-reads after construction:
// a center-frequency change is pushed to the tuner, and a bandwidth change
// rebuilds the low-pass filter's (b, a) coefficients and installs them,
// since buildGraph only designs them once at startup.
func retuneLoop(stop <-chan struct{}, cf, bw, fs *param.Numeric, tunerCell *param.Device, filterOrder int, filter *dspstage.Filter) {
	lastCF := cf.Get()
	lastBW := bw.Get()
	ticker := time.NewTicker(retuneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if cur := cf.Get(); cur != lastCF {
				lastCF = cur
				tunerCell.Do(func(v any) {
					if t, ok := v.(sdr.Tuner); ok {
						_ = t.SetCenterFreq(cur)
					}
				})
			}
			if cur := bw.Get(); cur != lastBW {
				lastBW = cur
				b, a := dspstage.DesignButterworthLowpass(filterOrder, cur/2, fs.Get())
				filter.SetCoefficients(b, a)
			}
		}
	}
}

// Shutdown idempotently tears the receiver down: stops the pipeline, the
// UI subprocess, and the audio stream, then waits for every goroutine
// Start spawned. Safe to call more than once; only the first call acts.
func (r *Receiver) Shutdown() {
	r.shutdown.Do(func() {
		r.stopFlag.Set()
		r.teardownUI()
		if r.audioStream != nil {
			r.audioStream.Stop()
			r.audioStream.Close()
		}
		r.wg.Wait()
	})
}

// SchedulerErr returns a channel that delivers the pipeline's terminal
// error once it has exited; receiving from it blocks until then. A nil
// error means the pipeline ran to a clean stop.
func (r *Receiver) SchedulerErr() <-chan error {
	return r.schedErr
}

// snapshotPublisher adapts the DSP graph's per-chunk metadata plus the
// current store values into a whole ipc.UIState snapshot. It does not
// know about screen/cursor/menu state, which belongs to the UI process
// alone; those fields are left zero here and filled in by the
// controller's own publishes.
type snapshotPublisher struct {
	pub       *ipc.Publisher
	store     *param.Store
	demod     *dspstage.DemodManager
	startUnix int64
}

func (s snapshotPublisher) Publish(meta map[string]any) error {
	m := pipeline.Meta(meta)
	db, _ := m.DB()
	demodName, _ := m.DemodName()
	if demodName == "" {
		demodName = s.demod.Name()
	}
	return s.pub.Publish(ipc.UIState{
		CenterFreq:    s.store.Numeric("sdr_cf").Get(),
		Bandwidth:     s.store.Numeric("sdr_dig_bw").Get(),
		Squelch:       s.store.Numeric("sdr_squelch").Get(),
		Volume:        s.store.Numeric("spkr_volume").Get(),
		DB:            db,
		StartTimeUnix: s.startUnix,
		DemodName:     demodName,
	})
}
