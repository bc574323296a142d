package healthdata

import (
	"context"
	"sort"
	"sync"
	"time"
)

// fakeStore is an in-memory recordsStore with the same merge semantics as
// the SQL upsert: nil patch fields keep the stored value, fresh inserts get
// zero defaults for fields with no signal.
type fakeStore struct {
	mutex   sync.Mutex
	nextID  int
	records map[int]map[time.Time]*DailyRecord // userID -> date -> record

	upsertCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID:  1,
		records: map[int]map[time.Time]*DailyRecord{},
	}
}

func (s *fakeStore) Upsert(_ context.Context, userID int, date time.Time, patch DayPatch) (*DailyRecord, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.upsertCalls++

	date = Day(date)
	if s.records[userID] == nil {
		s.records[userID] = map[time.Time]*DailyRecord{}
	}

	record, ok := s.records[userID][date]
	if !ok {
		record = &DailyRecord{
			ID:        s.nextID,
			UserID:    userID,
			Date:      date,
			HeartRate: "0",
			Activity:  map[string]float64{},
		}
		s.nextID++
		s.records[userID][date] = record
	}

	if patch.Steps != nil {
		record.Steps = *patch.Steps
	}
	if patch.Weight != nil {
		record.Weight = *patch.Weight
	}
	if patch.Sleep != nil {
		record.Sleep = *patch.Sleep
	}
	if patch.HeartRate != nil {
		record.HeartRate = *patch.HeartRate
	}
	if patch.Activity != nil {
		record.Activity = patch.Activity
	}
	if patch.ActivityMinutes != nil {
		record.ActivityMinutes = *patch.ActivityMinutes
	}
	if patch.Calories != nil {
		record.Calories = *patch.Calories
	}

	recordCopy := *record
	return &recordCopy, nil
}

func (s *fakeStore) Get(_ context.Context, userID int, date time.Time) (*DailyRecord, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	record, ok := s.records[userID][Day(date)]
	if !ok {
		return nil, ErrRecordNotFound
	}
	recordCopy := *record
	return &recordCopy, nil
}

func (s *fakeStore) ListRange(_ context.Context, userID int, from, to time.Time) ([]DailyRecord, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	from, to = Day(from), Day(to)
	var records []DailyRecord
	for date, record := range s.records[userID] {
		if date.Before(from) || date.After(to) {
			continue
		}
		records = append(records, *record)
	}
	// newest first, same as the SQL repo
	sort.Slice(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date)
	})
	return records, nil
}
