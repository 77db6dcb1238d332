package app

import (
	"context"
	"fmt"

	"mlpipe/internal/config"
	"mlpipe/ports"
)

// writeBoth runs write for the run-scoped path and then its latest mirror
func writeBoth(sp config.StagePath, write func(path string) error) error {
	for _, p := range []string{sp.Path, sp.Latest} {
		if err := write(p); err != nil {
			return err
		}
	}
	return nil
}

// upload puts the latest copy of a stage file under its object store key
func upload(ctx context.Context, store ports.ObjectStore, paths config.Paths, sp config.StagePath) (string, error) {
	key := paths.Key(sp.Latest)
	if err := store.PutFile(ctx, key, sp.Latest); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return key, nil
}
