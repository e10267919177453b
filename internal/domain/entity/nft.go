package entity

type NFTAttribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// NFTMetadata follows the ERC-721 metadata JSON layout marketplaces read.
type NFTMetadata struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	Attributes  []NFTAttribute `json:"attributes"`
	ExternalURL string         `json:"external_url"`
}

type MetadataRequest struct {
	Greeting GreetingResult `json:"greeting"`
	Design   string         `json:"design"`
	ImageURL string         `json:"imageUrl"`
	Festival string         `json:"festival"`
}

type DesignTheme struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Colors []string `json:"colors"`
}

const DefaultDesign = "festive-gold"

var designOrder = []string{
	"festive-gold", "cosmic-purple", "nature-green", "sunset-orange", "ocean-blue",
	"romantic-pink", "spring-floral", "midnight-dark", "electric-blue", "royal-purple",
	"crystal-clear", "rainbow-dream", "cloudy-sky", "winter-frost", "gift-wrapped",
	"target-focus", "shield-protection", "music-harmony", "golden-hour",
}

var designColors = map[string][]string{
	"festive-gold":      {"#FCD34D", "#F97316", "#DC2626"},
	"cosmic-purple":     {"#8B5CF6", "#EC4899", "#4F46E5"},
	"nature-green":      {"#4ADE80", "#10B981", "#0D9488"},
	"sunset-orange":     {"#FB923C", "#DC2626", "#EC4899"},
	"ocean-blue":        {"#60A5FA", "#06B6D4", "#0D9488"},
	"romantic-pink":     {"#F472B6", "#F43F5E", "#F87171"},
	"spring-floral":     {"#F9A8D4", "#A855F7", "#6366F1"},
	"midnight-dark":     {"#374151", "#475569", "#312E81"},
	"electric-blue":     {"#3B82F6", "#06B6D4", "#2563EB"},
	"royal-purple":      {"#7C3AED", "#8B5CF6", "#6D28D9"},
	"crystal-clear":     {"#67E8F9", "#BFDBFE", "#A5B4FC"},
	"rainbow-dream":     {"#F87171", "#FCD34D", "#4ADE80", "#60A5FA", "#A855F7"},
	"cloudy-sky":        {"#CBD5E1", "#E2E8F0", "#DBEAFE"},
	"winter-frost":      {"#DBEAFE", "#E0F2FE", "#FFFFFF"},
	"gift-wrapped":      {"#EF4444", "#F472B6", "#F43F5E"},
	"target-focus":      {"#F97316", "#DC2626", "#EC4899"},
	"shield-protection": {"#10B981", "#14B8A6", "#06B6D4"},
	"music-harmony":     {"#6366F1", "#A855F7", "#EC4899"},
	"golden-hour":       {"#F59E0B", "#FB923C", "#FCD34D"},
}

// DesignThemes returns the catalogue in display order.
func DesignThemes() []DesignTheme {
	out := make([]DesignTheme, 0, len(designOrder))
	for _, id := range designOrder {
		out = append(out, LookupDesign(id))
	}
	return out
}

// LookupDesign resolves a theme id, falling back to festive-gold.
func LookupDesign(id string) DesignTheme {
	colors, ok := designColors[id]
	if !ok {
		id = DefaultDesign
		colors = designColors[DefaultDesign]
	}
	return DesignTheme{ID: id, Name: DesignDisplayName(id), Colors: append([]string(nil), colors...)}
}

// DesignDisplayName turns "festive-gold" into "Festive Gold". Only the first
// hyphen becomes a space; every letter that starts a word is upper-cased.
func DesignDisplayName(id string) string {
	b := []byte(id)
	for i := range b {
		if b[i] == '-' {
			b[i] = ' '
			break
		}
	}
	for i := range b {
		if isWordByte(b[i]) && (i == 0 || !isWordByte(b[i-1])) && b[i] >= 'a' && b[i] <= 'z' {
			b[i] -= 'a' - 'A'
		}
	}
	return string(b)
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
