package session

import "sort"

// BuildFinalFeedback выводит запасной отчет о найме напрямую из накопленных
// наблюдений, без обращения к LLM. Рекомендация, уверенность и оценка
// честности выбираются из двух пресетов конфигурации по признаку
// "есть ли пробелы в знаниях".
func (l *Logger) BuildFinalFeedback() FinalFeedback {
	var topics []TopicReview
	var confirmed []string
	var gaps []string

	for _, obs := range l.Observations {
		topic := obs.Topic
		if topic == "" {
			topic = l.defaultTopic
		}
		topics = append(topics, TopicReview{
			Topic:         topic,
			Status:        obs.Status,
			Notes:         obs.Notes,
			CorrectAnswer: obs.CorrectAnswer,
		})
		switch obs.Status {
		case StatusConfirmed:
			confirmed = append(confirmed, topic)
		case StatusGap, StatusHallucinationSuspect:
			gaps = append(gaps, topic)
		}
	}

	ff := l.feedbackConfig
	recommendation := ff.Recommendation.NoGaps
	confidence := ff.Confidence.NoGaps
	honesty := ff.SoftSkills.HonestyNoGaps
	if len(gaps) > 0 {
		recommendation = ff.Recommendation.HasGaps
		confidence = ff.Confidence.HasGaps
		honesty = ff.SoftSkills.HonestyWithGaps
	}

	grade := l.Meta.Grade
	if grade == "" {
		grade = "Junior"
	}

	uniqueGaps := sortedUnique(gaps)
	roadmap := make([]RoadmapItem, 0, len(uniqueGaps))
	for _, gap := range uniqueGaps {
		roadmap = append(roadmap, RoadmapItem{
			Topic:     gap,
			Resources: ff.RoadmapResourcesDefault,
		})
	}

	return FinalFeedback{
		Verdict: Verdict{
			Grade:           grade,
			Recommendation:  recommendation,
			ConfidenceScore: confidence,
		},
		TechnicalReview: TechnicalReview{
			Topics:          topics,
			ConfirmedSkills: sortedUnique(confirmed),
			KnowledgeGaps:   uniqueGaps,
		},
		SoftSkills: SoftSkills{
			Clarity:    ff.SoftSkills.Clarity,
			Honesty:    honesty,
			Engagement: ff.SoftSkills.Engagement,
		},
		PersonalRoadmap: roadmap,
	}
}

func sortedUnique(items []string) []string {
	seen := make(map[string]bool, len(items))
	unique := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			unique = append(unique, item)
		}
	}
	sort.Strings(unique)
	return unique
}
