package config

const (
	CategoryMusic = "music"
	CategoryInfo  = "info"
)

// CategoryWeights orders categories in the help listing.
var CategoryWeights = map[string]int{
	CategoryInfo:  0,
	CategoryMusic: 10,
}

// CategoryTitles are the headings shown in the help listing.
var CategoryTitles = map[string]string{
	CategoryInfo:  "🕯️ Информация",
	CategoryMusic: "🎵 Музыка",
}
