package curriculum_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vnexam/examgen/internal/curriculum"
	"github.com/vnexam/examgen/internal/question"
)

const testMatrixYAML = `grade: "3"
subject: "toan"
semester: "hk1"
topics:
  - topic_id: so-hoc
    title: "Số học"
    lessons:
      - lesson_id: cong-tru
        title: "Phép cộng, phép trừ trong phạm vi 1000"
        matrix:
          allowed_types: [MultipleChoice, TrueFalse, FillBlank]
          levels:
            recognize: { questions: 2 }
            understand: { questions: 2 }
            apply: { questions: 1 }
  - topic_id: hinh-hoc
    title: "Hình học"
    lessons:
      - lesson_id: hinh-tron
        title: "Hình tròn, tâm, đường kính, bán kính"
        matrix:
          allowed_types: [MultipleChoice]
          levels:
            recognize: { questions: 2 }
`

func loadTestMatrix(t *testing.T) *curriculum.Matrix {
	t.Helper()
	path := filepath.Join(t.TempDir(), "matrix.yaml")
	if err := os.WriteFile(path, []byte(testMatrixYAML), 0o644); err != nil {
		t.Fatalf("writing matrix file: %v", err)
	}
	m, err := curriculum.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return m
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := curriculum.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() should return error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matrix.yaml")
	if err := os.WriteFile(path, []byte("topics: [broken"), 0o644); err != nil {
		t.Fatalf("writing matrix file: %v", err)
	}
	if _, err := curriculum.Load(path); err == nil {
		t.Fatal("Load() should return error for invalid YAML")
	}
}

func TestMatrix_Lookups(t *testing.T) {
	m := loadTestMatrix(t)

	if got := m.Grade(); got != "3" {
		t.Errorf("Grade() = %q, want %q", got, "3")
	}

	topics := m.Topics()
	if len(topics) != 2 {
		t.Fatalf("len(Topics()) = %d, want 2", len(topics))
	}
	if topics[0].TopicID != "so-hoc" {
		t.Errorf("Topics()[0].TopicID = %q, want so-hoc", topics[0].TopicID)
	}

	lessons := m.Lessons("so-hoc")
	if len(lessons) != 1 {
		t.Fatalf("len(Lessons(so-hoc)) = %d, want 1", len(lessons))
	}
	if lessons[0].Title != "Phép cộng, phép trừ trong phạm vi 1000" {
		t.Errorf("lesson title = %q", lessons[0].Title)
	}

	if got := m.TopicTitle("hinh-hoc"); got != "Hình học" {
		t.Errorf("TopicTitle() = %q, want %q", got, "Hình học")
	}

	coord := m.Coordinate("so-hoc", "cong-tru")
	want := question.Coordinate{Grade: "3", Subject: "toan", Semester: "hk1", TopicID: "so-hoc", LessonID: "cong-tru"}
	if coord != want {
		t.Errorf("Coordinate() = %+v, want %+v", coord, want)
	}
}

// Unknown ids look up to empty results, never errors; the id itself is
// the title fallback.
func TestMatrix_UnknownIDsSoftFail(t *testing.T) {
	m := loadTestMatrix(t)

	if lessons := m.Lessons("van-hoc"); len(lessons) != 0 {
		t.Errorf("Lessons(unknown) = %v, want empty", lessons)
	}
	if got := m.TopicTitle("van-hoc"); got != "van-hoc" {
		t.Errorf("TopicTitle(unknown) = %q, want the id back", got)
	}
	if got := m.LessonTitle("so-hoc", "missing"); got != "missing" {
		t.Errorf("LessonTitle(unknown) = %q, want the id back", got)
	}

	lm := m.LessonMatrix("van-hoc", "missing")
	if !lm.Empty() {
		t.Errorf("LessonMatrix(unknown) = %+v, want empty", lm)
	}
	if lm.AllowsType(question.MultipleChoice) {
		t.Error("empty matrix should not allow any type")
	}
}

func TestLessonMatrix_AllowsType(t *testing.T) {
	m := loadTestMatrix(t)
	lm := m.LessonMatrix("so-hoc", "cong-tru")

	if !lm.AllowsType(question.TrueFalse) {
		t.Error("AllowsType(TrueFalse) = false, want true")
	}
	if lm.AllowsType(question.Essay) {
		t.Error("AllowsType(Essay) = true, want false")
	}
}

func TestMatrix_SetPlanned(t *testing.T) {
	m := loadTestMatrix(t)

	m.SetPlanned("so-hoc", "cong-tru", question.Recognize, 5)
	lm := m.LessonMatrix("so-hoc", "cong-tru")
	if got := lm.Planned(question.Recognize); got != 5 {
		t.Errorf("Planned(recognize) = %d, want 5", got)
	}
	// Other levels keep the document values.
	if got := lm.Planned(question.Apply); got != 1 {
		t.Errorf("Planned(apply) = %d, want 1", got)
	}
}

// An override may target a level the document leaves out entirely.
func TestMatrix_SetPlanned_AbsentLevel(t *testing.T) {
	m := loadTestMatrix(t)

	m.SetPlanned("hinh-hoc", "hinh-tron", question.Apply, 3)
	lm := m.LessonMatrix("hinh-hoc", "hinh-tron")
	if got := lm.Planned(question.Apply); got != 3 {
		t.Errorf("Planned(apply) = %d, want 3", got)
	}
}

func TestMatrix_SetPlanned_ClampsNegative(t *testing.T) {
	m := loadTestMatrix(t)

	m.SetPlanned("so-hoc", "cong-tru", question.Understand, -4)
	lm := m.LessonMatrix("so-hoc", "cong-tru")
	if got := lm.Planned(question.Understand); got != 0 {
		t.Errorf("Planned(understand) = %d, want 0", got)
	}
}

func TestMatrix_ResetPlanned(t *testing.T) {
	m := loadTestMatrix(t)

	m.SetPlanned("so-hoc", "cong-tru", question.Recognize, 9)
	m.ResetPlanned()

	lm := m.LessonMatrix("so-hoc", "cong-tru")
	if got := lm.Planned(question.Recognize); got != 2 {
		t.Errorf("Planned(recognize) after reset = %d, want 2", got)
	}
}
