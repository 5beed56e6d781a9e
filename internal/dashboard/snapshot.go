package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"chartsync/internal/filters"
	"chartsync/internal/logger"
	"chartsync/internal/models"
	"chartsync/internal/storage"
)

// Snapshot captures the filters of every chart
func (d *Dashboard) Snapshot(name string) (models.Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshot(name)
}

func (d *Dashboard) snapshot(name string) (models.Snapshot, error) {
	snap := models.Snapshot{
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Charts:    make(map[string][]filters.Wire, len(d.order)),
	}
	for _, anchor := range d.order {
		fs := d.charts[anchor].Filters()
		if len(fs) == 0 {
			continue
		}
		wires, err := Wires(fs)
		if err != nil {
			return models.Snapshot{}, fmt.Errorf("chart %s: %w", anchor, err)
		}
		snap.Charts[anchor] = wires
	}
	return snap, nil
}

// Restore replaces every chart's filters with the snapshot's and redraws all groups.
// Charts missing from the snapshot are reset. Nothing changes if any filter fails to decode.
func (d *Dashboard) Restore(snap models.Snapshot) error {
	decoded := make(map[string][]filters.Filter, len(snap.Charts))
	for anchor, wires := range snap.Charts {
		if _, ok := d.charts[anchor]; !ok {
			d.log.Warn("Snapshot names an unknown chart", logger.Fields{"snapshot": snap.Name, "chart": anchor})
			continue
		}
		fs, err := filters.FromWires(wires)
		if err != nil {
			return fmt.Errorf("snapshot %s, chart %s: %w", snap.Name, anchor, err)
		}
		decoded[anchor] = fs
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.events.Cancel()
	for _, anchor := range d.order {
		c := d.charts[anchor]
		if fs := decoded[anchor]; len(fs) > 0 {
			c.ReplaceFilter(fs...)
		} else {
			c.Filter(nil)
		}
	}
	return d.redrawAll()
}

// Save stores a snapshot of the current filters under name
func (d *Dashboard) Save(ctx context.Context, name string) (models.Snapshot, error) {
	if d.store == nil {
		return models.Snapshot{}, ErrNoStorage
	}
	path, err := storage.SnapshotPath(name)
	if err != nil {
		return models.Snapshot{}, err
	}

	snap, err := d.Snapshot(name)
	if err != nil {
		return models.Snapshot{}, err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to encode snapshot %s: %w", name, err)
	}
	if err := d.store.StoreFile(ctx, path, data); err != nil {
		return models.Snapshot{}, err
	}
	d.log.Info("Snapshot saved", logger.Fields{"snapshot": name, "charts": len(snap.Charts)})
	return snap, nil
}

// Load restores the snapshot stored under name
func (d *Dashboard) Load(ctx context.Context, name string) (models.Snapshot, error) {
	if d.store == nil {
		return models.Snapshot{}, ErrNoStorage
	}
	path, err := storage.SnapshotPath(name)
	if err != nil {
		return models.Snapshot{}, err
	}

	data, err := d.store.GetFile(ctx, path)
	if err != nil {
		return models.Snapshot{}, err
	}
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to decode snapshot %s: %w", name, err)
	}
	if err := d.Restore(snap); err != nil {
		return models.Snapshot{}, err
	}
	d.log.Info("Snapshot restored", logger.Fields{"snapshot": name})
	return snap, nil
}

// Snapshots lists stored snapshot names in ascending order
func (d *Dashboard) Snapshots(ctx context.Context) ([]string, error) {
	if d.store == nil {
		return nil, ErrNoStorage
	}
	paths, err := d.store.List(ctx, storage.SnapshotPrefix)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		if name, ok := storage.SnapshotName(p); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
