package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/osse101/HarvestRealm_Go/internal/crop"
	"github.com/osse101/HarvestRealm_Go/internal/domain"
	"github.com/osse101/HarvestRealm_Go/internal/occupancy"
	"github.com/osse101/HarvestRealm_Go/internal/validation"
	"github.com/osse101/HarvestRealm_Go/schemas"
)

// Bounds is the playable rectangle of a world and its spawn point
type Bounds struct {
	MinX   float64 `yaml:"min_x"`
	MinY   float64 `yaml:"min_y"`
	MaxX   float64 `yaml:"max_x"`
	MaxY   float64 `yaml:"max_y"`
	SpawnX float64 `yaml:"spawn_x"`
	SpawnY float64 `yaml:"spawn_y"`
}

// Tuning holds the gameplay parameters shared by every room
type Tuning struct {
	World               Bounds                            `yaml:"world"`
	OccupancyRadius     float64                           `yaml:"occupancy_radius"`
	PlayerGrace         time.Duration                     `yaml:"player_grace"`
	HarvestDisplayDelay time.Duration                     `yaml:"harvest_display_delay"`
	RoomIdleTimeout     time.Duration                     `yaml:"room_idle_timeout"`
	TickRateHz          int                               `yaml:"tick_rate_hz"`
	ChatMaxRunes        int                               `yaml:"chat_max_runes"`
	OutboundQueueSize   int                               `yaml:"outbound_queue_size"`
	Seeds               map[domain.SeedType]crop.Override `yaml:"seeds"`
}

// DefaultTuning returns the built-in gameplay parameters
func DefaultTuning() Tuning {
	return Tuning{
		World: Bounds{
			MinX:   DefaultWorldMinX,
			MinY:   DefaultWorldMinY,
			MaxX:   DefaultWorldMaxX,
			MaxY:   DefaultWorldMaxY,
			SpawnX: (DefaultWorldMinX + DefaultWorldMaxX) / 2,
			SpawnY: (DefaultWorldMinY + DefaultWorldMaxY) / 2,
		},
		OccupancyRadius:     occupancy.DefaultRadius,
		PlayerGrace:         DefaultPlayerGrace,
		HarvestDisplayDelay: DefaultHarvestDisplayDelay,
		RoomIdleTimeout:     DefaultRoomIdleTimeout,
		TickRateHz:          DefaultTickRateHz,
		ChatMaxRunes:        DefaultChatMaxRunes,
		OutboundQueueSize:   DefaultOutboundQueueSize,
	}
}

// LoadTuning reads the YAML tuning file at path over the defaults.
// An empty path returns the defaults. The file is checked against the
// world tuning schema before it is decoded.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning %s: %w", path, err)
	}

	if err := validation.NewSchemaValidator().ValidateYAML(data, schemas.WorldTuning); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("decode tuning %s: %w", path, err)
	}
	if err := defaultSpawn(data, &t.World); err != nil {
		return t, fmt.Errorf("decode tuning %s: %w", path, err)
	}

	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	return t, nil
}

// defaultSpawn centers the spawn point on the loaded bounds for each axis
// the file leaves unset.
func defaultSpawn(data []byte, w *Bounds) error {
	var given struct {
		World struct {
			SpawnX *float64 `yaml:"spawn_x"`
			SpawnY *float64 `yaml:"spawn_y"`
		} `yaml:"world"`
	}
	if err := yaml.Unmarshal(data, &given); err != nil {
		return err
	}
	if given.World.SpawnX == nil {
		w.SpawnX = (w.MinX + w.MaxX) / 2
	}
	if given.World.SpawnY == nil {
		w.SpawnY = (w.MinY + w.MaxY) / 2
	}
	return nil
}

// Validate checks the cross-field constraints the schema cannot express
func (t Tuning) Validate() error {
	var errs []error
	w := t.World
	if w.MinX >= w.MaxX || w.MinY >= w.MaxY {
		errs = append(errs, fmt.Errorf("world bounds are empty: [%g,%g]x[%g,%g]", w.MinX, w.MaxX, w.MinY, w.MaxY))
	}
	if w.SpawnX < w.MinX || w.SpawnX > w.MaxX || w.SpawnY < w.MinY || w.SpawnY > w.MaxY {
		errs = append(errs, fmt.Errorf("spawn (%g,%g) is outside the world bounds", w.SpawnX, w.SpawnY))
	}
	if _, err := occupancy.New(t.OccupancyRadius); err != nil {
		errs = append(errs, err)
	}
	if t.PlayerGrace < 0 || t.HarvestDisplayDelay < 0 {
		errs = append(errs, errors.New("player_grace and harvest_display_delay must not be negative"))
	}
	if t.RoomIdleTimeout <= 0 {
		errs = append(errs, errors.New("room_idle_timeout must be positive"))
	}
	if t.TickRateHz < 1 {
		errs = append(errs, fmt.Errorf("tick_rate_hz must be at least 1, got %d", t.TickRateHz))
	}
	if t.ChatMaxRunes < 1 {
		errs = append(errs, fmt.Errorf("chat_max_runes must be at least 1, got %d", t.ChatMaxRunes))
	}
	if t.OutboundQueueSize < 1 {
		errs = append(errs, fmt.Errorf("outbound_queue_size must be at least 1, got %d", t.OutboundQueueSize))
	}
	if _, err := t.SeedTable(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SeedTable returns the default seed table with the configured overrides applied
func (t Tuning) SeedTable() (crop.Table, error) {
	return crop.DefaultTable().Apply(t.Seeds)
}

// TickInterval is the replication period derived from TickRateHz
func (t Tuning) TickInterval() time.Duration {
	if t.TickRateHz < 1 {
		return time.Second / DefaultTickRateHz
	}
	return time.Second / time.Duration(t.TickRateHz)
}
