package service

import (
	"fmt"
	"strings"

	"study-assistant-go/internal/generator"
	"study-assistant-go/internal/model"
)

const englishTutorTemplate = `
You are a helpful tutor. The student has read a document and taken an MCQ test on it.
Your answers MUST be in English.

RELEVANT DOCUMENT EXCERPTS (Use this context to answer):
{context_from_document} 

{wrong_section}

CHAT HISTORY (Only last 10 messages):
{history}

STUDENT'S CURRENT MESSAGE: {message}

INSTRUCTIONS:
- Be encouraging and supportive
- Help the student learn from their mistakes
- Guide them to think deeply and critically
- Connect concepts back to the relevant document excerpts
- Explain in clear, simple language
- Ask thought-provoking follow-up questions when appropriate

Respond naturally and conversationally in English.
`

const banglaTutorTemplate = `
আপনি একজন সহায়ক শিক্ষক। শিক্ষার্থী একটি নথি পড়েছে এবং তার উপর MCQ পরীক্ষা দিয়েছে।
আপনার উত্তর অবশ্যই বাংলায় দিতে হবে।

প্রাসঙ্গিক নথি থেকে অংশ (উত্তর দিতে এই কনটেক্সট ব্যবহার করুন):
{context_from_document} 

{wrong_section}

চ্যাট ইতিহাস (শুধুমাত্র শেষ ১০টি বার্তা):
{history}

শিক্ষার্থীর বর্তমান বার্তা: {message}

নির্দেশনা:
- উৎসাহজনক এবং সহায়ক হন
- শিক্ষার্থীকে তাদের ভুল থেকে শিখতে সাহায্য করুন
- তাদের গভীরভাবে এবং সমালোচনামূলকভাবে চিন্তা করতে গাইড করুন
- ধারণাগুলি প্রাসঙ্গিক নথির অংশে ফিরিয়ে সংযুক্ত করুন
- স্পষ্ট, সহজ ভাষায় ব্যাখ্যা করুন
- উপযুক্ত হলে চিন্তা-উদ্দীপক ফলো-আপ প্রশ্ন জিজ্ঞাসা করুন

স্বাভাবিক এবং কথোপকথনমূলকভাবে বাংলায় প্রতিক্রিয়া জানান।
`

type tutorLabels struct {
	wrongHeader string
	correct     string
	explanation string
	roles       map[string]string
}

var labelsByLanguage = map[string]tutorLabels{
	generator.LanguageEnglish: {
		wrongHeader: "Questions the student got wrong:",
		correct:     "Correct answer:",
		explanation: "Explanation:",
		roles:       map[string]string{"user": "Student", "assistant": "Tutor"},
	},
	generator.LanguageBangla: {
		wrongHeader: "শিক্ষার্থী যে প্রশ্নগুলি ভুল করেছে:",
		correct:     "সঠিক উত্তর:",
		explanation: "ব্যাখ্যা:",
		roles:       map[string]string{"user": "শিক্ষার্থী", "assistant": "শিক্ষক"},
	},
}

const chatHistoryWindow = 10

// buildTutorPrompt 组装辅导提示词：相关文档片段、错题、最近 10 条对话与当前消息。
func buildTutorPrompt(language string, excerpts []string, wrong []model.WrongQuestion, history []model.ChatMessage, message string) string {
	language = generator.NormalizeLanguage(language)
	labels := labelsByLanguage[language]

	var wrongSection strings.Builder
	if len(wrong) > 0 {
		wrongSection.WriteString(labels.wrongHeader + "\n")
		for _, wq := range wrong {
			fmt.Fprintf(&wrongSection, "- %s\n", wq.Question)
			fmt.Fprintf(&wrongSection, "  %s %s\n", labels.correct, wq.CorrectAnswer)
			fmt.Fprintf(&wrongSection, "  %s %s\n\n", labels.explanation, wq.Explanation)
		}
	}

	if len(history) > chatHistoryWindow {
		history = history[len(history)-chatHistoryWindow:]
	}
	var historyText strings.Builder
	for _, msg := range history {
		role, ok := labels.roles[msg.Role]
		if !ok {
			role = msg.Role
		}
		fmt.Fprintf(&historyText, "%s: %s\n", role, msg.Content)
	}

	template := englishTutorTemplate
	if language == generator.LanguageBangla {
		template = banglaTutorTemplate
	}
	return strings.NewReplacer(
		"{context_from_document}", strings.Join(excerpts, "\n\n---\n\n"),
		"{wrong_section}", wrongSection.String(),
		"{history}", historyText.String(),
		"{message}", message,
	).Replace(template)
}
