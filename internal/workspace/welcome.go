package workspace

import (
	"fmt"
	"time"

	"advisor-chat-be/internal/entity"
)

const (
	AdvisorWelcomeID    = "w-adv"
	RepositoryWelcomeID = "w-repo"
)

const (
	advisorFirstRunText    = "يا أهلاً بك.. معك المستشار المعرفي alhootah، يسعدني جداً مرافقتك في رحلة الانتقال الإيجابي من وزارة الصحة إلى الشركة القابضة. تفضل، كيف يمكنني خدمتك اليوم؟\nممكن نتشرف باسمك؟"
	repositoryFirstRunText = "أهلاً بك في مكتبتك الرقمية.. المستشار المعرفي alhootah جاهز لمساعدتك في تحليل واستخراج المعلومات من الوثائق التي تختارها.\nممكن نتشرف باسمك؟"
	advisorResetText       = "تم تصفير الذاكرة.. كيف أقدر أساعدك الآن؟"
	repositoryResetText    = "المكتبة الرقمية جاهزة من جديد.. تفضل بالاختيار من الساحة."
	focusWelcomeFormat     = "يا أهلاً بك، تم تفعيل المصدر: \"%s\".. كيف يمكن لمستشارك المعرفي خدمتك في تحليل محتوى هذا الملف؟\nممكن نتشرف باسمك؟"
)

func welcome(category entity.Category, advisorText, repositoryText string, now time.Time) entity.Message {
	if category == entity.CategoryRepository {
		return entity.Message{Id: RepositoryWelcomeID, Role: entity.RoleAssistant, Text: repositoryText, CreatedAt: now}
	}
	return entity.Message{Id: AdvisorWelcomeID, Role: entity.RoleAssistant, Text: advisorText, CreatedAt: now}
}

// FirstRunWelcome seeds a transcript that has never been persisted.
func FirstRunWelcome(category entity.Category, now time.Time) entity.Message {
	return welcome(category, advisorFirstRunText, repositoryFirstRunText, now)
}

// ResetWelcome seeds a transcript after a bulk clear.
func ResetWelcome(category entity.Category, now time.Time) entity.Message {
	return welcome(category, advisorResetText, repositoryResetText, now)
}

func FocusWelcome(sourceName string) string {
	return fmt.Sprintf(focusWelcomeFormat, sourceName)
}
