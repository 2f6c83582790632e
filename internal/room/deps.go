package room

import (
	"errors"
	"time"

	"github.com/osse101/HarvestRealm_Go/internal/config"
	"github.com/osse101/HarvestRealm_Go/internal/crop"
	"github.com/osse101/HarvestRealm_Go/internal/journal"
	"github.com/osse101/HarvestRealm_Go/internal/occupancy"
	"github.com/osse101/HarvestRealm_Go/internal/repository"
	"github.com/osse101/HarvestRealm_Go/internal/worker"
)

// Journal records committed economy events. *journal.Writer implements it.
type Journal interface {
	Write(e journal.Entry) error
}

// Deps are the collaborators shared by every room
type Deps struct {
	Ledger    repository.Ledger
	Pool      *worker.Pool
	Tuning    config.Tuning
	Seeds     crop.Table
	Occupancy *occupancy.Index
	// Journal is optional
	Journal Journal
	Clock   func() time.Time
}

// withDefaults fills derived collaborators from the tuning
func (d Deps) withDefaults() (Deps, error) {
	if d.Ledger == nil || d.Pool == nil {
		return d, errors.New(ErrMsgMissingLedger)
	}
	if d.Tuning.TickRateHz == 0 {
		d.Tuning = config.DefaultTuning()
	}
	if d.Seeds == nil {
		seeds, err := d.Tuning.SeedTable()
		if err != nil {
			return d, err
		}
		d.Seeds = seeds
	}
	if d.Occupancy == nil {
		idx, err := occupancy.New(d.Tuning.OccupancyRadius)
		if err != nil {
			return d, err
		}
		d.Occupancy = idx
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	return d, nil
}
