// Package results persists finished runs and serves run history.
package results

import (
	"context"

	"github.com/HealthNoteLabs/RUNSTR-PWA/internal/db"
	"github.com/HealthNoteLabs/RUNSTR-PWA/internal/session"
	"github.com/HealthNoteLabs/RUNSTR-PWA/internal/stream"

	"github.com/google/uuid"
)

type Service struct {
	db  db.Querier
	hub *stream.Hub
}

func NewService(q db.Querier, hub *stream.Hub) *Service {
	return &Service{db: q, hub: hub}
}

// Save stores a finished run with its splits and announces it on the
// stream hub.
func (s *Service) Save(ctx context.Context, deviceID string, result session.RunResult) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		DeviceID:  deviceID,
		RunResult: result,
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO runs (id, device_id, activity, unit, distance_m, duration_s, pace, average_speed_mps, total_steps, elevation_gain_m, elevation_loss_m, started_at, finished_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at
	`, run.ID, run.DeviceID, run.Activity, run.Unit, run.DistanceMeters, run.DurationSeconds,
		run.Pace, run.AverageSpeedMPS, run.TotalSteps, run.ElevationGainM, run.ElevationLossM,
		run.StartedAt, run.FinishedAt)
	if err := row.Scan(&run.CreatedAt); err != nil {
		return Run{}, err
	}

	for _, split := range result.Splits {
		_, err := s.db.Exec(ctx, `
			INSERT INTO run_splits (run_id, idx, duration_s, pace)
			VALUES ($1,$2,$3,$4)
		`, run.ID, split.Index, split.Duration, split.Pace)
		if err != nil {
			return Run{}, err
		}
	}

	if s.hub != nil {
		s.hub.Publish(run.ID, "completed", run)
	}
	return run, nil
}

// Get loads one run with its splits.
func (s *Service) Get(ctx context.Context, runID string) (Run, error) {
	var run Run
	row := s.db.QueryRow(ctx, `
		SELECT id, device_id, activity, unit, distance_m, duration_s, COALESCE(pace,0), COALESCE(average_speed_mps,0), COALESCE(total_steps,0), elevation_gain_m, elevation_loss_m, started_at, finished_at, created_at
		FROM runs WHERE id=$1
	`, runID)
	if err := row.Scan(&run.ID, &run.DeviceID, &run.Activity, &run.Unit, &run.DistanceMeters,
		&run.DurationSeconds, &run.Pace, &run.AverageSpeedMPS, &run.TotalSteps,
		&run.ElevationGainM, &run.ElevationLossM, &run.StartedAt, &run.FinishedAt, &run.CreatedAt); err != nil {
		return Run{}, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT idx, duration_s, pace
		FROM run_splits WHERE run_id=$1
		ORDER BY idx
	`, runID)
	if err != nil {
		return Run{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var split session.Split
		if err := rows.Scan(&split.Index, &split.Duration, &split.Pace); err != nil {
			return Run{}, err
		}
		run.Splits = append(run.Splits, split)
	}
	return run, nil
}

// List returns a device's runs, newest first, without splits.
func (s *Service) List(ctx context.Context, deviceID string) ([]Run, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, device_id, activity, unit, distance_m, duration_s, COALESCE(pace,0), COALESCE(average_speed_mps,0), COALESCE(total_steps,0), elevation_gain_m, elevation_loss_m, started_at, finished_at, created_at
		FROM runs WHERE device_id=$1
		ORDER BY started_at DESC
	`, deviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.DeviceID, &run.Activity, &run.Unit, &run.DistanceMeters,
			&run.DurationSeconds, &run.Pace, &run.AverageSpeedMPS, &run.TotalSteps,
			&run.ElevationGainM, &run.ElevationLossM, &run.StartedAt, &run.FinishedAt, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// Stats aggregates totals across a device's history.
func (s *Service) Stats(ctx context.Context, deviceID string) (Stats, error) {
	stats := Stats{DeviceID: deviceID}
	row := s.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(distance_m),0), COALESCE(SUM(duration_s),0), COALESCE(SUM(elevation_gain_m),0)
		FROM runs WHERE device_id=$1
	`, deviceID)
	if err := row.Scan(&stats.RunCount, &stats.TotalDistanceM, &stats.TotalDurationS, &stats.TotalElevGainM); err != nil {
		return Stats{}, err
	}
	return stats, nil
}
