/*
Package redisstore provides persistence of grown trees on a redis
backend, serialized with the tree/json encoding.
*/
package redisstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/colinsongf/Gradient-Boosted-Tree/tree"
	treejson "github.com/colinsongf/Gradient-Boosted-Tree/tree/json"
	redis "gopkg.in/redis.v5"
)

/*
Store persists trees under a key prefix on a redis client.
*/
type Store struct {
	rc     *redis.Client
	prefix string
}

// New builds a Store backed by the given redis client, prefixing
// every key with the given prefix.
func New(rc *redis.Client, prefix string) *Store {
	return &Store{rc, prefix}
}

/*
Store serializes the given tree and sets it under the given id on
redis, replacing any tree previously stored under it. It returns an
error if the tree cannot be serialized or stored, or if the given
context expires.
*/
func (s *Store) Store(ctx context.Context, id string, t *tree.Tree) error {
	var buf bytes.Buffer
	if err := treejson.WriteTree(t, &buf); err != nil {
		return fmt.Errorf("storing tree %q: %v", id, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.rc.Set(s.keyFor(id), buf.Bytes(), 0).Result(); err != nil {
		return fmt.Errorf("storing tree %q in redis: %v", id, err)
	}
	return nil
}

/*
Load retrieves the tree stored under the given id, or nil if no tree
is stored under it. It returns an error if the stored data cannot be
retrieved or decoded, or if the given context expires.
*/
func (s *Store) Load(ctx context.Context, id string) (*tree.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.rc.Get(s.keyFor(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("retrieving tree %q: %v", id, err)
	}
	t, err := treejson.ReadTree(bytes.NewReader([]byte(data)))
	if err != nil {
		return nil, fmt.Errorf("retrieving tree %q: decoding: %v", id, err)
	}
	return t, nil
}

/*
Delete removes the tree stored under the given id. It returns an
error if the deletion cannot be performed.
*/
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.rc.Del(s.keyFor(id)).Result(); err != nil {
		return fmt.Errorf("deleting tree %q from redis: %v", id, err)
	}
	return nil
}

func (s *Store) keyFor(id string) string {
	return fmt.Sprintf("%s:%s", s.prefix, id)
}
