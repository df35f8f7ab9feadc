package services

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/soaringjerry/Disha/internal/models"
)

// DefaultTopCodes is the number of codes returned when the caller does not ask.
const DefaultTopCodes = 10

type CountBucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type TypeAverage struct {
	Code    models.TypeCode `json:"code"`
	Name    string          `json:"name"`
	Average float64         `json:"average"`
}

type MonthlyCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// TypeReliability is Cronbach's alpha over one type's seven yes/no items.
// N counts the completed sessions that answered every item of the type.
type TypeReliability struct {
	Code  models.TypeCode `json:"code"`
	Alpha float64         `json:"alpha"`
	N     int             `json:"n"`
}

type AnalyticsSummary struct {
	Total         int               `json:"total"`
	Completed     int               `json:"completed"`
	ByGender      []CountBucket     `json:"by_gender"`
	ByEducation   []CountBucket     `json:"by_education"`
	TopCodes      []CountBucket     `json:"top_codes"`
	AverageScores []TypeAverage     `json:"average_scores"`
	MonthlyTrend  []MonthlyCount    `json:"monthly_trend"`
	Reliability   []TypeReliability `json:"reliability"`
}

type AnalyticsService struct {
	store SessionStore
}

func NewAnalyticsService(store SessionStore) *AnalyticsService {
	return &AnalyticsService{store: store}
}

// Summary aggregates all sessions. Demographic distributions count every
// session; codes, averages, trend and reliability use completed ones only.
func (s *AnalyticsService) Summary(ctx context.Context, top int) (*AnalyticsSummary, error) {
	if top < 0 {
		return nil, NewInvalidError("top must be positive")
	}
	if top == 0 {
		top = DefaultTopCodes
	}
	sessions, err := s.store.ListSessions(ctx, "")
	if err != nil {
		return nil, storageErr("analytics", err)
	}
	out := &AnalyticsSummary{Total: len(sessions)}
	gender := map[string]int{}
	education := map[string]int{}
	codes := map[string]int{}
	months := map[string]int{}
	sums := map[models.TypeCode]int{}
	var completed []*models.Session
	for _, sess := range sessions {
		gender[bucketKey(sess.Profile.Gender)]++
		education[bucketKey(sess.Profile.Education)]++
		if !sess.Complete() {
			continue
		}
		completed = append(completed, sess)
		if sess.TopThreeCode != "" {
			codes[sess.TopThreeCode]++
		}
		if sess.CompletedAt != nil {
			months[sess.CompletedAt.UTC().Format("2006-01")]++
		}
		for _, c := range models.CanonicalOrder {
			sums[c] += sess.Scores.Get(c)
		}
	}
	out.Completed = len(completed)
	out.ByGender = sortedBuckets(gender, 0)
	out.ByEducation = sortedBuckets(education, 0)
	out.TopCodes = sortedBuckets(codes, top)
	out.MonthlyTrend = monthlyTrend(months)
	for _, c := range models.CanonicalOrder {
		it, _ := models.LookupType(c)
		avg := 0.0
		if len(completed) > 0 {
			avg = math.Round(float64(sums[c])/float64(len(completed))*100) / 100
		}
		out.AverageScores = append(out.AverageScores, TypeAverage{Code: c, Name: it.Name, Average: avg})
	}
	out.Reliability = typeReliability(completed)
	return out, nil
}

func bucketKey(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return "unspecified"
	}
	return v
}

// sortedBuckets orders by count descending, then key. limit 0 keeps all.
func sortedBuckets(m map[string]int, limit int) []CountBucket {
	out := make([]CountBucket, 0, len(m))
	for k, v := range m {
		out = append(out, CountBucket{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func monthlyTrend(m map[string]int) []MonthlyCount {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]MonthlyCount, 0, len(keys))
	for _, k := range keys {
		out = append(out, MonthlyCount{Month: k, Count: m[k]})
	}
	return out
}

func typeReliability(sessions []*models.Session) []TypeReliability {
	itemsByType := map[models.TypeCode][]string{}
	for _, q := range models.Questions() {
		itemsByType[q.Type] = append(itemsByType[q.Type], q.ID)
	}
	answered := make([]map[string]float64, 0, len(sessions))
	for _, sess := range sessions {
		m := map[string]float64{}
		for id, choice := range sess.Answers {
			q, ok := models.LookupQuestion(id)
			if !ok {
				continue
			}
			v := 0.0
			if models.AffirmativeAnswer(choice) {
				v = 1
			}
			m[q.ID] = v
		}
		answered = append(answered, m)
	}
	out := make([]TypeReliability, 0, len(models.CanonicalOrder))
	for _, c := range models.CanonicalOrder {
		ids := itemsByType[c]
		var matrix [][]float64
		for _, m := range answered {
			row := make([]float64, 0, len(ids))
			for _, id := range ids {
				v, ok := m[id]
				if !ok {
					break
				}
				row = append(row, v)
			}
			if len(row) == len(ids) {
				matrix = append(matrix, row)
			}
		}
		out = append(out, TypeReliability{Code: c, Alpha: math.Round(CronbachAlpha(matrix)*1000) / 1000, N: len(matrix)})
	}
	return out
}
