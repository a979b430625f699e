package domain

// Source описывает внешний источник данных
type Source struct {
	Name string
	URL  string
}
