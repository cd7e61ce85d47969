package services

import (
	"context"

	"surfapp/internal/apiclient"
	"surfapp/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// SessionDetail is everything the session screen shows.
type SessionDetail struct {
	Session models.Session
	Media   []models.Media
	Logs    []models.LogEntry
	// LogsErr is set when the logs could not be loaded. Logs is then empty.
	LogsErr error
}

// LoadSessionDetail fetches a session with its media and logs in parallel.
// A session or media failure cancels the other calls and is returned. A logs
// failure never fails the batch.
func LoadSessionDetail(ctx context.Context, client apiclient.Client, sessionID string) (*SessionDetail, error) {
	g, gctx := errgroup.WithContext(ctx)

	var (
		session *models.Session
		media   []models.Media
		logs    []models.LogEntry
		logsErr error
	)

	g.Go(func() error {
		var err error
		session, err = client.GetSession(gctx, sessionID)
		return err
	})
	g.Go(func() error {
		var err error
		media, err = client.GetSessionMedia(gctx, sessionID)
		return err
	})
	g.Go(func() error {
		logs, logsErr = client.GetSessionLogs(gctx, sessionID)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if logsErr != nil {
		log.Warn().Err(logsErr).Str("session_id", sessionID).Msg("Session logs unavailable")
		logs = nil
	}
	if logs == nil {
		logs = []models.LogEntry{}
	}
	if media == nil {
		media = []models.Media{}
	}
	return &SessionDetail{Session: *session, Media: media, Logs: logs, LogsErr: logsErr}, nil
}
