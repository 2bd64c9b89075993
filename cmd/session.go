package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dotcommander/evalpanel/internal/config"
	"github.com/dotcommander/evalpanel/internal/evaluation"
	"github.com/dotcommander/evalpanel/internal/snapshot"
	"github.com/dotcommander/evalpanel/internal/template"
)

// now is swapped out in tests.
var now = time.Now

// session is the configuration and snapshot store one command works against.
type session struct {
	cfg   *config.Config
	store snapshot.Store
}

func openSession() (*session, error) {
	cfg, err := config.LoadConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	store, err := snapshot.Open(cfg.Store, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("error opening snapshot store: %w", err)
	}
	return &session{cfg: cfg, store: store}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// evaluate parses the template and, when from is set, reopens that snapshot
// against it. Template warnings go to errOut.
func (s *session) evaluate(ctx context.Context, templatePath, from string, errOut io.Writer) (*evaluation.Store, error) {
	if templatePath == "" {
		return nil, errors.New("--template is required")
	}
	groups, err := template.Load(templatePath)
	if err != nil {
		return nil, fmt.Errorf("error loading template: %w", err)
	}
	for _, w := range template.Warnings(groups) {
		fmt.Fprintf(errOut, "Warning: %s\n", w)
	}

	es := evaluation.NewStore()
	if from == "" {
		es.LoadTemplate(groups)
		return es, nil
	}

	rec, err := s.store.Load(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("error opening snapshot: %w", err)
	}
	es.Hydrate(groups, rec)
	return es, nil
}

// save stores the active evaluation under key, or under a key derived from
// the current time when key is empty.
func (s *session) save(ctx context.Context, es *evaluation.Store, key string, force bool) (string, error) {
	if key == "" {
		key = snapshot.NewKey(now(), s.cfg.KeyLayout)
	}
	rec, err := es.Snapshot()
	if err != nil {
		return "", err
	}
	if err := s.store.Save(ctx, key, rec, force); err != nil {
		if errors.Is(err, snapshot.ErrExists) {
			return "", fmt.Errorf("%w; rerun with --force to overwrite", err)
		}
		return "", fmt.Errorf("error saving snapshot: %w", err)
	}
	return key, nil
}
