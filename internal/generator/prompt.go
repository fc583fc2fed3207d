package generator

import (
	"fmt"
	"strings"
)

// buildPrompt constructs the Vietnamese instruction for the external
// generation service: curriculum labels, requested type and level, and
// the required JSON output shape. The service must answer with a single
// JSON object, optionally fenced.
func buildPrompt(req Request) string {
	var sb strings.Builder

	fmt.Fprintf(&sb,
		"Hãy tạo một câu hỏi %s lớp %s %s theo TT27, đúng nội dung SGK:\n",
		req.Coordinate.Subject, req.Coordinate.Grade, req.Coordinate.Semester)
	fmt.Fprintf(&sb, "- Chủ đề: %s (id: %s)\n", req.TopicTitle, req.Coordinate.TopicID)
	fmt.Fprintf(&sb, "- Bài học: %s (id: %s)\n", req.LessonTitle, req.Coordinate.LessonID)
	fmt.Fprintf(&sb, "- Dạng: %s\n", req.Type.Label())
	fmt.Fprintf(&sb, "- Mức độ: %s\n\n", req.Level.Label())

	sb.WriteString("Trả về duy nhất một đối tượng JSON với các trường:\n")
	sb.WriteString("prompt (string), options (array hoặc null), answer (string hoặc number),\n")
	sb.WriteString("explanation (string ngắn gọn), unit (string: '', 'cm', 'm', 'cm²'...), tags (array of strings).\n")
	sb.WriteString("Phải phù hợp với chương/bài học; không vượt phạm vi học kỳ; ")
	sb.WriteString("câu nhiều lựa chọn có 4 phương án, chỉ 1 đúng; câu Đúng/Sai trả về 'Đúng' hoặc 'Sai'.\n")

	return sb.String()
}

// stripCodeFences removes an optional markdown code fence wrapper from
// a service response, with or without a language tag.
func stripCodeFences(raw string) string {
	txt := strings.TrimSpace(raw)
	if !strings.HasPrefix(txt, "```") {
		return txt
	}
	parts := strings.SplitN(txt, "```", 3)
	if len(parts) < 2 {
		return txt
	}
	inner := parts[1]
	if i := strings.IndexByte(inner, '\n'); i >= 0 {
		// Drop a possible language tag on the opening fence line.
		if tag := strings.TrimSpace(inner[:i]); tag == "" || !strings.ContainsAny(tag, "{}[]") {
			inner = inner[i+1:]
		}
	}
	return strings.TrimSpace(inner)
}
