package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/furnidex/internal/db"
)

func (s *Store) hsetCmd(key string, fields map[string]string) rueidis.Completed {
	cmd := s.b().Hset().Key(key).FieldValue()
	for k, v := range fields {
		cmd = cmd.FieldValue(k, v)
	}
	return cmd.Build()
}

// HSetMulti writes several hashes, plus their TTLs, in one pipelined round-trip.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}
	cmds := make([]rueidis.Completed, 0, len(items))
	keys := make([]string, 0, len(items))
	for _, item := range items {
		cmds = append(cmds, s.hsetCmd(item.Key, item.Fields))
		keys = append(keys, item.Key)
		if item.TTL > 0 {
			cmds = append(cmds, s.b().Expire().Key(item.Key).Seconds(int64(item.TTL.Seconds())).Build())
			keys = append(keys, item.Key)
		}
	}
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return keyError(db.OpHSet, keys[i], err)
		}
	}
	return nil
}

// HGetAll returns every field of a hash; a missing key yields an empty map.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	m, err := s.do(ctx, s.b().Hgetall().Key(key).Build()).AsStrMap()
	if err != nil {
		return nil, opError(db.OpHGetAll, err)
	}
	return m, nil
}

// HGetAllMulti fetches several hashes in one round-trip, preserving key order.
func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = s.b().Hgetall().Key(key).Build()
	}
	out := make([]map[string]string, len(keys))
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		m, err := res.AsStrMap()
		if err != nil {
			return nil, keyError(db.OpHGetAll, keys[i], err)
		}
		out[i] = m
	}
	return out, nil
}

// HMGet returns the requested fields that exist.
func (s *Store) HMGet(ctx context.Context, key string, fields ...string) (map[string]string, error) {
	if len(fields) == 0 {
		return map[string]string{}, nil
	}
	arr, err := s.do(ctx, s.b().Hmget().Key(key).Field(fields...).Build()).ToArray()
	if err != nil {
		return nil, opError(db.OpHMGet, err)
	}
	out := make(map[string]string, len(fields))
	for i, v := range arr {
		if i >= len(fields) {
			break
		}
		str, err := v.ToString()
		if err != nil {
			continue
		}
		out[fields[i]] = str
	}
	return out, nil
}

// HIncrBy increments a hash counter.
func (s *Store) HIncrBy(ctx context.Context, key, field string, val int64) error {
	if err := s.do(ctx, s.b().Hincrby().Key(key).Field(field).Increment(val).Build()).Error(); err != nil {
		return opError(db.OpHIncrBy, err)
	}
	return nil
}

// Scan collects every key matching pattern.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		res, err := s.do(ctx, s.b().Scan().Cursor(cursor).Match(pattern).Count(200).Build()).AsScanEntry()
		if err != nil {
			return nil, opError(db.OpScan, err)
		}
		keys = append(keys, res.Elements...)
		if cursor = res.Cursor; cursor == 0 {
			return keys, nil
		}
	}
}
