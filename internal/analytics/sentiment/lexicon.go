package sentiment

// polarity holds a small product-copy oriented lexicon. Scores follow the
// usual [-1, 1] convention; a description's polarity is the mean over its
// sentiment-bearing tokens.
var polarity = map[string]float64{
	"amazing":     0.9,
	"awesome":     0.9,
	"beautiful":   0.85,
	"best":        1.0,
	"bright":      0.4,
	"broken":      -0.8,
	"charming":    0.6,
	"cheap":       -0.4,
	"classic":     0.3,
	"comfortable": 0.5,
	"cracked":     -0.7,
	"cute":        0.5,
	"damaged":     -0.8,
	"defective":   -0.9,
	"delicate":    0.2,
	"deluxe":      0.6,
	"dirty":       -0.6,
	"dull":        -0.4,
	"elegant":     0.7,
	"excellent":   1.0,
	"exclusive":   0.5,
	"fancy":       0.5,
	"faulty":      -0.9,
	"favourite":   0.7,
	"fine":        0.4,
	"fragile":     -0.2,
	"fresh":       0.4,
	"glamorous":   0.6,
	"good":        0.7,
	"gorgeous":    0.8,
	"great":       0.8,
	"handmade":    0.3,
	"happy":       0.8,
	"ideal":       0.7,
	"inferior":    -0.7,
	"large":       0.1,
	"lovely":      0.7,
	"luxury":      0.7,
	"magic":       0.5,
	"mini":        0.1,
	"missing":     -0.6,
	"modern":      0.3,
	"new":         0.3,
	"nice":        0.6,
	"old":         -0.1,
	"perfect":     1.0,
	"poor":        -0.7,
	"premium":     0.6,
	"pretty":      0.6,
	"quality":     0.4,
	"retro":       0.2,
	"rusty":       -0.5,
	"scratched":   -0.6,
	"shabby":      -0.4,
	"shiny":       0.4,
	"small":       -0.1,
	"special":     0.5,
	"stained":     -0.6,
	"stunning":    0.85,
	"stylish":     0.6,
	"super":       0.7,
	"sweet":       0.6,
	"torn":        -0.7,
	"ugly":        -0.8,
	"useless":     -0.9,
	"vintage":     0.3,
	"warm":        0.4,
	"wonderful":   0.9,
	"worn":        -0.4,
	"wrong":       -0.6,
}
