package submission

import "testing"

func TestQuestion_Padded(t *testing.T) {
	tests := []struct {
		q    Question
		want string
	}{
		{1, "01"},
		{5, "05"},
		{9, "09"},
		{10, "10"},
		{42, "42"},
		{123, "123"},
	}
	for _, tt := range tests {
		if got := tt.q.Padded(); got != tt.want {
			t.Errorf("Question(%d).Padded() = %q, want %q", tt.q, got, tt.want)
		}
	}
}

func TestLayout_PathsStayInLockstep(t *testing.T) {
	l := Layout{TestsDir: "tests", AnswersDir: "answers", Ext: ".py"}

	for q := Question(1); q <= 9; q++ {
		want := "tests/test_0" + q.String() + ".py"
		if got := l.TestPath(q); got != want {
			t.Errorf("TestPath(%d) = %q, want %q", q, got, want)
		}
		want = "answers/question_0" + q.String() + ".py"
		if got := l.AnswerPath(q); got != want {
			t.Errorf("AnswerPath(%d) = %q, want %q", q, got, want)
		}
	}

	if got := l.TestPath(10); got != "tests/test_10.py" {
		t.Errorf("TestPath(10) = %q, want tests/test_10.py", got)
	}
	if got := l.AnswerPath(10); got != "answers/question_10.py" {
		t.Errorf("AnswerPath(10) = %q, want answers/question_10.py", got)
	}
}

func TestParseQuestion(t *testing.T) {
	tests := []struct {
		in      string
		want    Question
		wantErr bool
	}{
		{"3", 3, false},
		{" 12 ", 12, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"three", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseQuestion(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseQuestion(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseQuestion(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
