package service

import (
	"context"
	"encoding/json"

	"metalpriceservice/internal/rates"
)

const currentSnapshotKey = "snapshot:current"

func (s *PriceService) cacheGetCurrent(ctx context.Context) (rates.Snapshot, bool) {
	if s.cache == nil {
		return rates.Snapshot{}, false
	}

	data, err := s.cache.Get(ctx, currentSnapshotKey).Bytes()
	if err != nil {
		return rates.Snapshot{}, false
	}

	var snapshot rates.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		s.log.Warnw("Discarding unreadable cached snapshot", "key", currentSnapshotKey, "error", err)
		return rates.Snapshot{}, false
	}
	return snapshot, true
}

func (s *PriceService) cacheSetCurrent(ctx context.Context, snapshot rates.Snapshot) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		s.log.Warnw("Failed to encode snapshot for cache", "error", err)
		return
	}
	if err := s.cache.Set(ctx, currentSnapshotKey, data, s.opts.CurrentSnapshotTTL).Err(); err != nil {
		s.log.Warnw("Failed to update cache", "key", currentSnapshotKey, "error", err)
	}
}

func (s *PriceService) cacheClearCurrent(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, currentSnapshotKey).Err(); err != nil {
		s.log.Warnw("Failed to clear cached snapshot", "key", currentSnapshotKey, "error", err)
	}
}
