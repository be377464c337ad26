package affinity

import (
	"codeberg.org/mutker/perfgov/internal/errors"
	"codeberg.org/mutker/perfgov/internal/logger"
	"codeberg.org/mutker/perfgov/internal/topology"
	"golang.org/x/sys/unix"
)

// Role names a worker thread by workload so it can be steered to the right
// core class.
type Role int

const (
	// CpuEmulation needs sustained high performance: gold cores, leaving
	// the prime core free for bursts.
	CpuEmulation Role = iota
	// GpuSubmission needs peak burst performance: prime plus gold.
	GpuSubmission
	// Audio is latency-tolerant and cheap: efficiency (silver) cores.
	Audio
	// Generic threads keep default OS scheduling.
	Generic
)

var roleNames = map[Role]string{
	CpuEmulation:  "cpu_emulation",
	GpuSubmission: "gpu_submission",
	Audio:         "audio",
	Generic:       "generic",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}

	return "unknown"
}

// Assigner pins role-named threads to core subsets of a detected topology.
// It holds no mutable state; Pin touches only the calling thread's own
// scheduling attributes.
type Assigner struct {
	topo topology.Topology
}

func New(topo topology.Topology) *Assigner {
	return &Assigner{topo: topo}
}

func (a *Assigner) cores(role Role) []int {
	switch role {
	case CpuEmulation:
		return a.topo.Gold.Cores()
	case GpuSubmission:
		return append(a.topo.Prime.Cores(), a.topo.Gold.Cores()...)
	case Audio:
		return a.topo.Silver.Cores()
	default:
		return nil
	}
}

// Pin restricts the calling thread to the role's core class. The caller is
// expected to have locked its goroutine to an OS thread first. Affinity is a
// performance hint: an empty class (unrecognized topology) or a refused
// syscall degrades to default scheduling and never fails the caller.
func (a *Assigner) Pin(role Role) {
	cores := a.cores(role)
	if len(cores) == 0 {
		logger.Debug().
			Str("role", role.String()).
			Msg("No core class for role, keeping default scheduling")
		return
	}

	var set unix.CPUSet
	for _, core := range cores {
		if core >= 0 && core < a.topo.TotalCores {
			set.Set(core)
		}
	}

	if err := unix.SchedSetaffinity(0, &set); err != nil {
		errFactory := errors.New()
		logger.Warn().
			Str("role", role.String()).
			Ints("cores", cores).
			AnErr("error", errFactory.Wrap(errors.ErrSetAffinity, err)).
			Msg("Failed to pin thread, keeping default scheduling")
		return
	}

	logger.Info().
		Str("role", role.String()).
		Ints("cores", cores).
		Msg("Thread pinned")
}

// RecommendedThreadCount sizes worker pools: the gold class on recognized
// hardware, otherwise every available core.
func (a *Assigner) RecommendedThreadCount() int {
	if a.topo.Recognized && a.topo.Gold.Size() > 0 {
		return a.topo.Gold.Size()
	}

	return a.topo.TotalCores
}
