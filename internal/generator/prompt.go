package generator

import "strings"

// 难度
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// 语言
const (
	LanguageEnglish = "en"
	LanguageBangla  = "bn"
)

// NormalizeDifficulty 非法取值回退到 medium。
func NormalizeDifficulty(d string) string {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d
	default:
		return DifficultyMedium
	}
}

// NormalizeLanguage 非法取值回退到 en。
func NormalizeLanguage(lang string) string {
	if lang == LanguageBangla {
		return LanguageBangla
	}
	return LanguageEnglish
}

var difficultyInstructions = map[string]map[string]string{
	DifficultyEasy: {
		LanguageEnglish: "Focus on basic application and straightforward analysis. Questions should test fundamental understanding.",
		LanguageBangla:  "মৌলিক প্রয়োগ এবং সরল বিশ্লেষণে ফোকাস করুন। প্রশ্নগুলি মৌলিক বোঝাপড়া পরীক্ষা করবে।",
	},
	DifficultyMedium: {
		LanguageEnglish: "Require synthesis of multiple concepts and deeper evaluation. Balance between application and analysis.",
		LanguageBangla:  "একাধিক ধারণার সংশ্লেষণ এবং গভীর মূল্যায়ন প্রয়োজন। প্রয়োগ এবং বিশ্লেষণের মধ্যে ভারসাম্য।",
	},
	DifficultyHard: {
		LanguageEnglish: "Demand complex evaluation, creation of solutions, and advanced critical thinking. Highly challenging questions.",
		LanguageBangla:  "জটিল মূল্যায়ন, সমাধান সৃষ্টি এবং উন্নত সমালোচনামূলক চিন্তাভাবনা প্রয়োজন। অত্যন্ত চ্যালেঞ্জিং প্রশ্ন।",
	},
}

const englishTemplate = `
You are an expert educator specialized in creating INFERENTIAL and CRITICAL THINKING questions.

DIFFICULTY LEVEL: {difficulty}
{instruction}

DOCUMENT CONTENT:
{document_text}

PREVIOUSLY GENERATED QUESTIONS (DO NOT REPEAT):
{previous_questions}

TASK: Generate 1 UNIQUE Multiple Choice Question (MCQ) that requires:
- Deep comprehension and analysis (NOT just fact recall)
- Connecting multiple concepts from the document
- Drawing logical conclusions
- Applying knowledge to new scenarios
- Understanding implicit meanings

COGNITIVE LEVELS TO USE (vary across questions):
- Apply: How would this concept work in situation X?
- Analyze: What's the relationship between A and B?
- Evaluate: Which approach would be most effective and why?
- Create: How could you combine these ideas to solve Y?

RULES:
1. NO direct fact-recall questions
2. Answer should NOT be explicitly stated in text
3. Require synthesis of multiple document parts
4. All 4 options must be plausible (no obviously wrong answers)
5. Question must test analytical/critical thinking
6. Ensure this question is DIFFERENT from all previous questions

OUTPUT FORMAT (JSON only):
{
  "question": "The inferential question text",
  "options": {
    "A": "Option 1",
    "B": "Option 2",
    "C": "Option 3",
    "D": "Option 4"
  },
  "correct_answer": "A",
  "explanation": "Detailed explanation with reasoning",
  "cognitive_level": "Analyze"
}

CRITICAL: Output ONLY valid JSON. No markdown, no extra text.
`

const banglaTemplate = `
আপনি একজন বিশেষজ্ঞ শিক্ষাবিদ যিনি অনুমানমূলক এবং সমালোচনামূলক চিন্তাভাবনা প্রশ্ন তৈরিতে দক্ষ।

কঠিনতার স্তর: {difficulty}
{instruction}

নথির বিষয়বস্তু:
{document_text}

পূর্বে তৈরি প্রশ্ন (পুনরাবৃত্তি করবেন না):
{previous_questions}

কাজ: ১টি অনন্য বহুনির্বাচনী প্রশ্ন (MCQ) তৈরি করুন যার জন্য প্রয়োজন:
- গভীর বোঝাপড়া এবং বিশ্লেষণ (শুধুমাত্র তথ্য মুখস্থ নয়)
- নথি থেকে একাধিক ধারণা সংযুক্ত করা
- যৌক্তিক সিদ্ধান্তে উপনীত হওয়া
- নতুন পরিস্থিতিতে জ্ঞান প্রয়োগ করা
- অন্তর্নিহিত অর্থ বোঝা

জ্ঞানীয় স্তর ব্যবহার করুন (প্রশ্ন জুড়ে বৈচিত্র্য):
- প্রয়োগ: এই ধারণাটি X পরিস্থিতিতে কীভাবে কাজ করবে?
- বিশ্লেষণ: A এবং B এর মধ্যে সম্পর্ক কী?
- মূল্যায়ন: কোন পদ্ধতি সবচেয়ে কার্যকর হবে এবং কেন?
- সৃষ্টি: Y সমাধানের জন্য এই ধারণাগুলি কীভাবে একত্রিত করবেন?

নিয়ম:
1. সরাসরি তথ্য-স্মরণ প্রশ্ন নয়
2. উত্তর পাঠ্যে স্পষ্টভাবে উল্লেখ করা উচিত নয়
3. নথির একাধিক অংশের সংশ্লেষণ প্রয়োজন
4. সব ৪টি বিকল্প যুক্তিসঙ্গত হতে হবে (স্পষ্টতই ভুল উত্তর নয়)
5. প্রশ্ন বিশ্লেষণাত্মক/সমালোচনামূলক চিন্তাভাবনা পরীক্ষা করবে
6. এই প্রশ্নটি পূর্বের সব প্রশ্ন থেকে আলাদা হতে হবে

আউটপুট ফর্ম্যাট (শুধুমাত্র JSON):
{
  "question": "অনুমানমূলক প্রশ্নের টেক্সট",
  "options": {
    "A": "বিকল্প ১",
    "B": "বিকল্প ২",
    "C": "বিকল্প ৩",
    "D": "বিকল্প ৪"
  },
  "correct_answer": "A",
  "explanation": "যুক্তি সহ বিস্তারিত ব্যাখ্যা",
  "cognitive_level": "বিশ্লেষণ"
}

গুরুত্বপূর্ণ: শুধুমাত্র বৈধ JSON আউটপুট করুন। কোন মার্কডাউন, অতিরিক্ত টেক্সট নয়।
`

// BuildPrompt 填充出题模板。previous 应已按最近优先排列；为空时写入 "None"。
func BuildPrompt(language, difficulty, documentText string, previous []string) string {
	language = NormalizeLanguage(language)
	difficulty = NormalizeDifficulty(difficulty)

	template := englishTemplate
	if language == LanguageBangla {
		template = banglaTemplate
	}
	prev := "None"
	if len(previous) > 0 {
		prev = strings.Join(previous, "\n")
	}
	// Replacer 单次扫描模板，文档内容中的占位符文本不会被再次替换
	r := strings.NewReplacer(
		"{difficulty}", strings.ToUpper(difficulty),
		"{instruction}", difficultyInstructions[difficulty][language],
		"{document_text}", documentText,
		"{previous_questions}", prev,
	)
	return r.Replace(template)
}

// RecentFirst 返回 texts 中最后 n 条，最近的在前。
func RecentFirst(texts []string, n int) []string {
	if n <= 0 || len(texts) == 0 {
		return nil
	}
	start := len(texts) - n
	if start < 0 {
		start = 0
	}
	out := make([]string, 0, len(texts)-start)
	for i := len(texts) - 1; i >= start; i-- {
		out = append(out, texts[i])
	}
	return out
}
