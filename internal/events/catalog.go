package events

import "strings"

// Catalog - набор форматных строк одной локали. Аргументы подставляются через fmt.
type Catalog struct {
	Someone string

	NewProjectTitle string
	NewProjectBody  string // отправитель, проект

	NewBugTitle string // проект
	NewBugBody  string // отправитель, баг

	BugUpdateTitle string // проект
	BugUpdateBody  string // отправитель, баг, статус

	ChatMessageTitle string // проект
	ChatMessageBody  string // отправитель, начало сообщения

	ProjectUpdateTitle string
	ProjectUpdateBody  string // отправитель, проект

	TestBroadcastTitle string
	TestBroadcastBody  string // хаб

	PermissionsUpdateTitle string
	PermissionsUpdateBody  string

	MemberRemovedTitle string
	MemberRemovedBody  string

	BroadcastTitle string
	BroadcastBody  string // хаб
}

// Строки арабского каталога совпадают с теми, что уже видят пользователи мобильного приложения.
var arabic = Catalog{
	Someone: "Someone",

	NewProjectTitle: "مشروع جديد",
	NewProjectBody:  `%s أنشأ مشروعًا جديدًا: "%s"`,

	NewBugTitle: `جديد في مشروع "%s"`,
	NewBugBody:  `%s أضاف: "%s"`,

	BugUpdateTitle: `تحديث في مشروع "%s"`,
	BugUpdateBody:  `%s قام بتحديث حالة "%s" إلى "%s"`,

	ChatMessageTitle: `رسالة جديدة في "%s"`,
	ChatMessageBody:  "%s: %s...",

	ProjectUpdateTitle: "تحديث تفاصيل المشروع",
	ProjectUpdateBody:  `%s قام بتحديث تفاصيل مشروع "%s"`,

	TestBroadcastTitle: "إشعار اختبار",
	TestBroadcastBody:  `هذا إشعار تجريبي لجميع أعضاء الـ Hub "%s"`,

	PermissionsUpdateTitle: "تحديث الصلاحيات",
	PermissionsUpdateBody:  "قام القائد بتحديث صلاحياتك في الفريق.",

	MemberRemovedTitle: "إزالة من الفريق",
	MemberRemovedBody:  "لقد تمت إزالتك من الفريق بواسطة القائد.",

	BroadcastTitle: "إشعار لجميع الأعضاء",
	BroadcastBody:  `هذا إشعار لجميع أعضاء الـ Hub "%s"`,
}

var english = Catalog{
	Someone: "Someone",

	NewProjectTitle: "New project",
	NewProjectBody:  `%s created a new project: "%s"`,

	NewBugTitle: `New in project "%s"`,
	NewBugBody:  `%s added: "%s"`,

	BugUpdateTitle: `Update in project "%s"`,
	BugUpdateBody:  `%s changed the status of "%s" to "%s"`,

	ChatMessageTitle: `New message in "%s"`,
	ChatMessageBody:  "%s: %s...",

	ProjectUpdateTitle: "Project details updated",
	ProjectUpdateBody:  `%s updated the details of project "%s"`,

	TestBroadcastTitle: "Test notification",
	TestBroadcastBody:  `This is a test notification for all members of Hub "%s"`,

	PermissionsUpdateTitle: "Permissions updated",
	PermissionsUpdateBody:  "The team lead updated your permissions.",

	MemberRemovedTitle: "Removed from the team",
	MemberRemovedBody:  "You have been removed from the team by the team lead.",

	BroadcastTitle: "Notification for all members",
	BroadcastBody:  `This is a notification for all members of Hub "%s"`,
}

var catalogs = map[string]Catalog{
	"ar": arabic,
	"en": english,
}

// DefaultLocale используется, если запрошенная локаль неизвестна.
const DefaultLocale = "ar"

// SupportedLocale сообщает, есть ли каталог для локали (с учетом нормализации "en-US" -> "en").
func SupportedLocale(locale string) bool {
	_, ok := catalogs[normalizeLocale(locale)]
	return ok
}

func normalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		locale = locale[:i]
	}
	return locale
}

// catalogFor выбирает каталог: сначала запрошенная локаль, затем fallback, затем арабский.
func catalogFor(locale, fallback string) Catalog {
	if c, ok := catalogs[normalizeLocale(locale)]; ok {
		return c
	}
	if c, ok := catalogs[normalizeLocale(fallback)]; ok {
		return c
	}
	return arabic
}
