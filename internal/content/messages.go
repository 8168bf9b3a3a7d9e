// Package content holds the user-facing Russian texts and control labels
// returned to the conversation layer. Keeping them in one place lets the
// front end swap wording without touching route logic.
package content

// Error messages for the four caller-visible signal conditions plus the
// uninitialized-catalog case.
const (
	ErrorSearchSystemInit = "Система поиска временно недоступна. Попробуйте позже."
	ErrorInvalidTime      = "Не получилось распознать время. Укажите число часов, например: 3 или 2.5."
	ErrorTimeNotPositive  = "Время прогулки должно быть больше нуля. Укажите число часов, например: 3 или 2.5."
	ErrorTimeTooLong      = "Слишком долгая прогулка. Укажите время не больше 16 часов."
	ErrorNoPlacesFound    = "К сожалению, по вашим интересам ничего не нашлось. Попробуйте описать их иначе."
	ErrorCannotMakeRoute  = "Не удалось составить маршрут: за указанное время не успеть ни к одному месту."
)

// RAGFallbackNotification is attached to the result when tag search found
// nothing and the semantic index supplied the candidates instead.
const RAGFallbackNotification = "Точных совпадений по тегам не нашлось, поэтому я подобрал места по смыслу вашего запроса."

// Route text building blocks.
const (
	RouteHeader = "🗺️ Ваш маршрут:\n\n"

	// RoutePlaceInfo: index, title, travel minutes, address, visit minutes.
	RoutePlaceInfo = "%d. %s\n🚶 В пути: %d мин\n📍 %s\n⏱️ На осмотр: %d мин\n\n"

	// RouteFoodPlaceInfo: index, title, category, travel minutes, address,
	// visit minutes.
	RouteFoodPlaceInfo = "%d. %s (%s)\n🚶 В пути: %d мин\n📍 %s\n🍽️ На перекус: %d мин\n\n"

	// RouteSummary: hours, minutes, distance km.
	RouteSummary = "Итого: около %d ч %d мин, примерно %.1f км пешком."
)

// Control labels and opaque action tokens.
const (
	ShowDescriptionsLabel  = "Узнать подробнее"
	ShowDescriptionsAction = "show_all_descriptions"

	RemakeRouteLabel  = "🔄 Составить новый маршрут"
	RemakeRouteAction = "remake_route"

	Open2GISMapLabel = "Открыть карту 2GIS"
)
