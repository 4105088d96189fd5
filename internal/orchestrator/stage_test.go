package orchestrator

import "testing"

func TestMaxQuestions(t *testing.T) {
	cases := []struct {
		minutes int
		want    int
	}{
		{30, 15},
		{29, 15},
		{2, 1},
		{1, 1},
		{0, 0},
		{-5, 0},
	}
	for _, c := range cases {
		if got := MaxQuestions(c.minutes); got != c.want {
			t.Errorf("MaxQuestions(%d) = %d, want %d", c.minutes, got, c.want)
		}
	}
}

func TestClassifyStage(t *testing.T) {
	cases := []struct {
		name          string
		questionCount int
		maxQuestions  int
		elapsed       float64
		total         float64
		want          Stage
	}{
		{"no questions yet is always opening", 0, 15, 0, 30, StageOpening},
		{"opening wins even near the end of time", 0, 15, 29, 30, StageOpening},
		{"mid-session", 5, 15, 10, 30, StageMain},
		{"two questions remaining", 13, 15, 10, 30, StageClosing},
		{"three questions remaining", 12, 15, 10, 30, StageMain},
		{"two minutes remaining", 3, 15, 28, 30, StageClosing},
		{"over time budget", 3, 15, 31, 30, StageClosing},
		{"over question budget", 16, 15, 5, 30, StageClosing},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ClassifyStage(c.questionCount, c.maxQuestions, c.elapsed, c.total)
			if got != c.want {
				t.Fatalf("ClassifyStage(%d, %d, %v, %v) = %v, want %v",
					c.questionCount, c.maxQuestions, c.elapsed, c.total, got, c.want)
			}
			// pure: a second call with identical arguments must agree
			if again := ClassifyStage(c.questionCount, c.maxQuestions, c.elapsed, c.total); again != got {
				t.Fatalf("ClassifyStage is not deterministic: %v then %v", got, again)
			}
		})
	}
}
