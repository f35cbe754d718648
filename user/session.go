package user

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/selinkarabicakkk/ecommerce-backend/rest"
	"github.com/tidwall/buntdb"
)

const sessionTTL = 60 * 24 * time.Hour // 60 days

const (
	SessionKey = "session"
	LocalsKey  = "user"
)

type Session struct {
	UserId int64
	Token  string
}

// SessionStore maps bearer tokens to user ids. Sessions are created by the
// auth collaborator at login time; this subsystem only resolves them.
type SessionStore struct {
	Buntdb    *buntdb.DB
	UserStore *Store
}

func (s *SessionStore) RegisterNew(userId int64) (*Session, error) {
	// uuid has no ":", so keys built from it can't clash with the
	// "session:" prefix namespace.
	token := uuid.New().String()

	session := &Session{
		UserId: userId,
		Token:  token,
	}
	err := s.Buntdb.Update(func(tx *buntdb.Tx) error {
		options := &buntdb.SetOptions{
			Expires: true,
			TTL:     sessionTTL,
		}
		_, _, err := tx.Set("session:"+token, strconv.FormatInt(userId, 10), options)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("bunt update: %w", err)
	}
	return session, nil
}

func (s *SessionStore) Exists(token string) (bool, error) {
	err := s.Buntdb.View(func(tx *buntdb.Tx) error {
		_, err := tx.Get("session:" + token)
		return err
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, buntdb.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("bunt view: %w", err)
	}
}

func (s *SessionStore) Invalidate(token string) error {
	err := s.Buntdb.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete("session:" + token)
		return err
	})
	if err != nil {
		return fmt.Errorf("bunt update: %w", err)
	}
	return nil
}

func (s *SessionStore) Authorize(ctx *fiber.Ctx) error {
	auth := ctx.Get(fiber.HeaderAuthorization)
	if auth == "" {
		return fiber.ErrUnauthorized
	}
	if !strings.HasPrefix(auth, "Bearer ") {
		return fiber.NewError(fiber.ErrBadRequest.Code, "invalid auth type")
	}
	token := strings.TrimPrefix(auth, "Bearer ")

	var userIdRaw string
	err := s.Buntdb.View(func(tx *buntdb.Tx) error {
		var err error
		userIdRaw, err = tx.Get("session:" + token)
		return err
	})
	if err != nil {
		if err == buntdb.ErrNotFound {
			return fiber.ErrUnauthorized
		} else {
			return fmt.Errorf("could not get session: %w", err)
		}
	}
	userId, err := strconv.ParseInt(userIdRaw, 10, 0)
	if err != nil {
		return fmt.Errorf("user id raw parse: %w", err)
	}
	session := &Session{
		UserId: userId,
		Token:  token,
	}
	caller, err := s.UserStore.ById(ctx.Context(), session.UserId)
	if err != nil {
		return fmt.Errorf("retrieve user by id: %w", err)
	}

	rest.RequestLog(ctx).
		WithField("user_id", userId).
		Infoln("Authorized access.")

	ctx.Locals(SessionKey, session)
	ctx.Locals(LocalsKey, caller)
	return nil
}
