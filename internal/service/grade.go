package service

import "github.com/noah-isme/academic-records-api/internal/models"

type gradeBand struct {
	min   int
	grade models.Grade
}

// Bands are checked top-down; the first threshold not above marks wins.
var gradeBands = []gradeBand{
	{min: 90, grade: models.Grade{Letter: "A+", StyleClass: "grade-a-plus"}},
	{min: 80, grade: models.Grade{Letter: "A", StyleClass: "grade-a"}},
	{min: 70, grade: models.Grade{Letter: "B", StyleClass: "grade-b"}},
	{min: 60, grade: models.Grade{Letter: "C", StyleClass: "grade-c"}},
	{min: 50, grade: models.Grade{Letter: "D", StyleClass: "grade-d"}},
}

var failingGrade = models.Grade{Letter: "F", StyleClass: "grade-f"}

// ComputeGrade maps marks to a letter grade and its badge style class.
func ComputeGrade(marks int) models.Grade {
	for _, band := range gradeBands {
		if marks >= band.min {
			return band.grade
		}
	}
	return failingGrade
}
