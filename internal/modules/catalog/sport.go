package catalog

import (
	"net/url"
	"strings"
)

// sportKeywords is checked in order; the first sport with a matching
// keyword wins and football is the fallback.
var sportKeywords = []struct {
	sport    Sport
	keywords []string
}{
	{SportBasketball, []string{"basketball", "hoops", "nba", "bb-"}},
	{SportCricket, []string{"cricket", "odi", "t20", "ipl", "cr-"}},
	{SportBaseball, []string{"baseball", "mlb", "bs-"}},
	{SportHockey, []string{"hockey", "nhl", "hk-"}},
}

// InferSport guesses the sport from free text such as name, team and slug.
func InferSport(texts ...string) Sport {
	haystack := strings.ToLower(strings.Join(texts, " "))
	for _, entry := range sportKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(haystack, kw) {
				return entry.sport
			}
		}
	}
	return SportFootball
}

var sportCovers = map[Sport]string{
	SportFootball:   "https://images.unsplash.com/photo-1577212017184-80cc0da11082?auto=format&fit=crop&w=1400&q=70",
	SportBasketball: "https://images.pexels.com/photos/7005768/pexels-photo-7005768.jpeg?auto=compress&cs=tinysrgb&w=1400",
	SportCricket:    "https://images.pexels.com/photos/34211752/pexels-photo-34211752.jpeg?auto=compress&cs=tinysrgb&w=1400",
	SportBaseball:   "https://images.pexels.com/photos/5184688/pexels-photo-5184688.jpeg?auto=compress&cs=tinysrgb&w=1400",
	SportHockey:     "https://images.unsplash.com/photo-1547650276-c112256c9cc6?auto=format&fit=crop&w=1400&q=70",
}

// SportCover is the default image of a sport; unknown sports get football's.
func SportCover(s Sport) string {
	if cover, ok := sportCovers[s]; ok {
		return cover
	}
	return sportCovers[SportFootball]
}

// CoverPair is the two-image fallback used when a product has no images.
func CoverPair(s Sport) []string {
	cover := SportCover(s)
	return []string{cover, cover}
}

// imageFor builds a deterministic placeholder image for a product name.
func imageFor(seed string, variant int) string {
	return "https://picsum.photos/seed/" + url.PathEscape(seed+" "+string(rune('0'+variant))) + "/800/600"
}
