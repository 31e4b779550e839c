package cmd

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/killallgit/voicenotes/internal/audio"
	"github.com/killallgit/voicenotes/internal/database"
	"github.com/killallgit/voicenotes/internal/services/notes"
	"github.com/killallgit/voicenotes/internal/services/playback"
	"github.com/killallgit/voicenotes/internal/services/recorder"
	"github.com/killallgit/voicenotes/pkg/config"
	apperrors "github.com/killallgit/voicenotes/pkg/errors"
	"github.com/killallgit/voicenotes/pkg/ffmpeg"
)

// janitorInterval is how often abandoned capture files are swept
const janitorInterval = time.Hour

// app holds the services a command works with
type app struct {
	cfg     *config.Config
	policy  apperrors.Policy
	db      *database.DB
	storage *notes.FilesystemStorage
	notes   *notes.Service
	prober  *audio.Prober
}

// newApp wires the note store for the configured backend and loads the list
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.GetConfig()
	if err != nil {
		return nil, err
	}

	policy, err := apperrors.ParsePolicy(cfg.Errors.Policy)
	if err != nil {
		return nil, err
	}

	repo, db, err := openRepository(cfg, cfg.Storage.Backend)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		policy:  policy,
		db:      db,
		storage: notes.NewFilesystemStorage(cfg.Storage.Dir),
		prober:  audio.NewProber(newFFprobe(cfg.Processing)),
	}
	a.notes = notes.NewService(repo, a.storage, a.prober, notes.WithPolicy(policy))

	if err := a.notes.EnsureSetup(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.notes.Load(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// openRepository creates the metadata repository for backend. The database
// is returned for the sqlite backend so it can be closed.
func openRepository(cfg *config.Config, backend string) (notes.Repository, *database.DB, error) {
	switch strings.ToLower(backend) {
	case "json":
		return notes.NewJSONRepository(filepath.Join(cfg.Storage.Dir, cfg.Storage.MetadataFile)), nil, nil
	case "sqlite":
		db, err := database.Open(cfg.Database.Path, cfg.Database.Verbose)
		if err != nil {
			return nil, nil, apperrors.IOError("open database", cfg.Database.Path, err)
		}
		return notes.NewSQLiteRepository(db.DB, cfg.Database.Path), db, nil
	case "memory":
		return notes.MemoryRepository{}, nil, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", notes.ErrUnknownBackend, backend)
	}
}

// newFFprobe returns nil when ffprobe is unavailable; WAV notes can still be
// probed from their headers.
func newFFprobe(cfg config.ProcessingConfig) *ffmpeg.FFprobe {
	ff := ffmpeg.New(cfg.FFprobePath, cfg.FFprobeTimeout)
	if err := ff.ValidateBinary(); err != nil {
		log.Printf("[DEBUG] ffprobe unavailable, only WAV durations can be read: %v", err)
		return nil
	}
	return ff
}

// newRecorder creates a recording session backed by the default input device
func (a *app) newRecorder() (*recorder.Recorder, error) {
	profile, err := recorder.ProfileFromConfig(a.cfg.Recording)
	if err != nil {
		return nil, err
	}
	return recorder.New(
		audio.NewCapture(a.cfg.Storage.TempDir),
		audio.DeviceGate{},
		a.notes,
		profile,
		recorder.WithPolicy(a.policy),
		recorder.WithMeteringInterval(a.cfg.Recording.MeteringInterval),
	), nil
}

// newPlayer creates a player on the default output device
func (a *app) newPlayer(opts ...playback.Option) *playback.Player {
	base := []playback.Option{
		playback.WithPolicy(a.policy),
		playback.WithRates(a.cfg.Playback.Rates),
		playback.WithRewindThreshold(a.cfg.Playback.RewindThreshold),
		playback.WithProgressInterval(a.cfg.Playback.ProgressInterval),
	}
	return playback.NewPlayer(audio.NewTransport(a.cfg.Playback.ProgressInterval), append(base, opts...)...)
}

// startJanitor removes capture files left behind by earlier sessions
func (a *app) startJanitor(ctx context.Context) *recorder.Janitor {
	j := recorder.NewJanitor(a.cfg.Storage.TempDir, a.cfg.Storage.MaxTempAge, janitorInterval)
	j.Start(ctx)
	return j
}

// Close releases the database, if any
func (a *app) Close() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		log.Printf("[WARN] Failed to close database: %v", err)
	}
}
