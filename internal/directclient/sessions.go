package directclient

import (
	"context"
	"errors"
	"io"
	"time"

	"surfapp/internal/apiclient"
	"surfapp/internal/backend"
	"surfapp/internal/models"

	"github.com/rs/zerolog/log"
)

func (c *Client) ListMySessions(ctx context.Context) (list []models.Session, err error) {
	defer c.finish("list_my_sessions", time.Now(), &err)

	u, err := c.currentUser()
	if err != nil {
		return nil, err
	}
	return c.backend.ListSessions(ctx, participant(u))
}

func (c *Client) GetSession(ctx context.Context, id string) (session *models.Session, err error) {
	defer c.finish("get_session", time.Now(), &err)

	u, err := c.currentUser()
	if err != nil {
		return nil, err
	}
	return c.ownSession(ctx, u, id)
}

// ownSession loads a session the user takes part in. Sessions of other users
// are reported as not found.
func (c *Client) ownSession(ctx context.Context, u *models.User, id string) (*models.Session, error) {
	s, err := c.backend.GetSession(ctx, id)
	if err != nil && !errors.Is(err, backend.ErrNotFound) {
		return nil, err
	}
	if err != nil || (s.SurferID != u.ID && s.PhotographerID != u.ID) {
		return nil, apiclient.Newf(apiclient.CodeNotFound, "session %s not found", id)
	}
	return s, nil
}

func (c *Client) GetSessionMedia(ctx context.Context, sessionID string) (media []models.Media, err error) {
	defer c.finish("get_session_media", time.Now(), &err)

	u, err := c.currentUser()
	if err != nil {
		return nil, err
	}
	if _, err := c.ownSession(ctx, u, sessionID); err != nil {
		return nil, err
	}
	return c.backend.ListMedia(ctx, sessionID)
}

// GetSessionLogs never fails: any error is logged and reported as no logs.
func (c *Client) GetSessionLogs(ctx context.Context, sessionID string) ([]models.LogEntry, error) {
	logs, err := c.sessionLogs(ctx, sessionID)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to fetch session logs")
		return []models.LogEntry{}, nil
	}
	return logs, nil
}

func (c *Client) sessionLogs(ctx context.Context, sessionID string) (logs []models.LogEntry, err error) {
	defer c.finish("get_session_logs", time.Now(), &err)

	u, err := c.currentUser()
	if err != nil {
		return nil, err
	}
	if _, err := c.ownSession(ctx, u, sessionID); err != nil {
		return nil, err
	}
	return c.backend.ListLogs(ctx, sessionID)
}

func (c *Client) GetPresignedUploadURL(ctx context.Context, sessionID, filename, contentType string) (*models.PresignedUpload, error) {
	return nil, apiclient.Newf(apiclient.CodeNotImplemented, "presigned uploads are not implemented for the direct transport")
}

func (c *Client) UploadFile(ctx context.Context, uploadURL, contentType string, body io.Reader) error {
	return apiclient.Newf(apiclient.CodeNotImplemented, "file uploads are not implemented for the direct transport")
}
