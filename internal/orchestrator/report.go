package orchestrator

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"interview-coach/internal/session"
)

// PrintReport выводит финальный отчет о найме в консоль.
func PrintReport(report session.FinalFeedback) {
	title := color.New(color.FgYellow, color.Bold)
	label := color.New(color.Bold)
	confirmed := color.New(color.FgGreen)
	gap := color.New(color.FgRed)
	suspect := color.New(color.FgMagenta)

	fmt.Println()
	title.Println(strings.Repeat("=", 60))
	title.Println("ФИНАЛЬНЫЙ ОТЧЕТ")
	title.Println(strings.Repeat("=", 60))

	label.Print("Грейд: ")
	fmt.Println(report.Verdict.Grade)
	label.Print("Рекомендация: ")
	fmt.Println(report.Verdict.Recommendation)
	label.Print("Уверенность: ")
	fmt.Printf("%d/100\n", report.Verdict.ConfidenceScore)

	if len(report.TechnicalReview.Topics) > 0 {
		fmt.Println()
		label.Println("Темы:")
		for _, topic := range report.TechnicalReview.Topics {
			statusColor := confirmed
			switch topic.Status {
			case session.StatusGap:
				statusColor = gap
			case session.StatusHallucinationSuspect:
				statusColor = suspect
			}
			fmt.Printf("  - %s: ", topic.Topic)
			statusColor.Print(topic.Status)
			if topic.Notes != "" {
				fmt.Print(" — " + topic.Notes)
			}
			fmt.Println()
			if topic.CorrectAnswer != "" {
				fmt.Println("    Правильный ответ: " + topic.CorrectAnswer)
			}
		}
	}

	if len(report.TechnicalReview.ConfirmedSkills) > 0 {
		fmt.Println()
		label.Println("Подтвержденные навыки:")
		for _, skill := range report.TechnicalReview.ConfirmedSkills {
			confirmed.Println("  + " + skill)
		}
	}
	if len(report.TechnicalReview.KnowledgeGaps) > 0 {
		fmt.Println()
		label.Println("Пробелы в знаниях:")
		for _, topic := range report.TechnicalReview.KnowledgeGaps {
			gap.Println("  - " + topic)
		}
	}

	fmt.Println()
	label.Println("Soft skills:")
	fmt.Println("  Ясность изложения: " + report.SoftSkills.Clarity)
	fmt.Println("  Честность: " + report.SoftSkills.Honesty)
	fmt.Println("  Вовлеченность: " + report.SoftSkills.Engagement)

	if len(report.PersonalRoadmap) > 0 {
		fmt.Println()
		label.Println("Персональный план развития:")
		for _, item := range report.PersonalRoadmap {
			fmt.Println("  * " + item.Topic)
			for _, resource := range item.Resources {
				fmt.Println("      " + resource)
			}
		}
	}
	title.Println(strings.Repeat("=", 60))
}
