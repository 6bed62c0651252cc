package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const shortLinkAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ShortLinkService maps short codes to recipe ids in Redis. Codes are stable
// per recipe.
type ShortLinkService struct {
	redis  *redis.Client
	length int
}

func NewShortLinkService(client *redis.Client, length int) *ShortLinkService {
	return &ShortLinkService{redis: client, length: length}
}

func recipeKey(id uuid.UUID) string { return "shortlink:recipe:" + id.String() }
func codeKey(code string) string    { return "shortlink:code:" + code }

// Ensure returns the recipe's short code, creating one on first use.
func (s *ShortLinkService) Ensure(ctx context.Context, recipeID uuid.UUID) (string, error) {
	code, err := s.redis.Get(ctx, recipeKey(recipeID)).Result()
	if err == nil {
		return code, nil
	}
	if !errors.Is(err, redis.Nil) {
		return "", err
	}

	for {
		code, err = randomCode(s.length)
		if err != nil {
			return "", err
		}
		ok, err := s.redis.SetNX(ctx, codeKey(code), recipeID.String(), 0).Result()
		if err != nil {
			return "", err
		}
		if ok {
			break
		}
		// collision, try another code
	}

	if err := s.redis.Set(ctx, recipeKey(recipeID), code, 0).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// Resolve maps a short code back to the recipe id.
func (s *ShortLinkService) Resolve(ctx context.Context, code string) (uuid.UUID, error) {
	val, err := s.redis.Get(ctx, codeKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("corrupt short link %q: %w", code, err)
	}
	return id, nil
}

func randomCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = shortLinkAlphabet[int(b)%len(shortLinkAlphabet)]
	}
	return string(buf), nil
}
