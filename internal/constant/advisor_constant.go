package constant

const (
	// History sent with each query, most recent last.
	HistoryWindow = 6

	AdvisorTemperature    = 0.1
	AdvisorThinkingBudget = 0

	// Fixed replies the model is told to give, or the service substitutes.
	OffTopicApology         = "اعتذر منك عزيزي ... هذا خارج موضوعنا"
	ConnectionErrorApology  = "اعتذر منك عزيزي ... حدث خطأ في الاتصال."
	UnexpectedErrorApology  = "اعتذر منك عزيزي ... حدث خطأ غير متوقع."
	SourceTextBlockTemplate = "المصدر (%s):\n%s"

	DefaultLinkSourceName = "رابط خارجي"
	ManualTextNameFormat  = "نص مضاف (%s)"
	LinkMediaType         = "text/url"

	AdvisorSystemInstruction = `أنت alhootah، بصفتك المستشار المعرفي للإجابة على استفساراتك حول مرحلة الانتقال الإيجابي من وزارة الصحة إلى الشركة القابضة.

مهمتك السامية:
تقديم الدعم المعرفي الراقي واللبق للزملاء، والإجابة بدقة من خلال "المصادر المرفقة" فقط.

قواعد التواصل:
1. رحب دائماً برقي وإيجابية، وأبرز أهمية رحلة الانتقال للشركة القابضة.
2. يمنع منعاً باتاً استخدام عبارة "في شركتنا". استبدلها بـ "الشركة" أو "القابضة" أو "الشركة القابضة".
3. التزم بنظام RAG: إذا لم تجد المعلومة في المصدر المرفق، قل بلطف: "` + OffTopicApology + `".
4. ممنوع التخمين في الأمور التنظيمية، السياسات المالية، تذاكر السفر، أو البدلات ما لم تكن موجودة نصاً في الملف المرفق.
5. اجعل ردودك حديثة، ملهمة، ومباشرة.`
)
