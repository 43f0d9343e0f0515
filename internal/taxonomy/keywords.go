package taxonomy

// Keyword dictionaries used by the classifier. Matching is lowercase
// substring matching over title + description + technique name.

var defenseKeywords = []string{
	"escape", "defense", "defend", "counter", "survival", "recover",
	"recovery", "prevention", "frame", "framing", "posture",
}

var attackKeywords = []string{
	"submission", "choke", "strangle", "armbar", "arm bar", "kimura",
	"americana", "guillotine", "triangle", "omoplata", "heel hook",
	"kneebar", "knee bar", "toe hold", "ankle lock", "sweep", "pass",
	"passing", "takedown", "throw", "attack", "finish", "tap",
}

var conceptKeywords = []string{
	"concept", "principle", "theory", "framework", "mindset", "strategy",
	"fundamentals", "movement", "drill", "system",
}

// positionCategories maps category to its keywords. Order matters: the first
// matching bucket wins.
var positionCategories = []struct {
	Category string
	Keywords []string
}{
	{"closed_guard", []string{"closed guard", "full guard"}},
	{"half_guard", []string{"half guard", "half-guard", "z guard", "knee shield", "deep half"}},
	{"open_guard", []string{"open guard", "de la riva", "spider guard", "lasso", "butterfly guard", "x guard", "x-guard", "collar sleeve", "rubber guard"}},
	{"mount", []string{"mount", "mounted"}},
	{"side_control", []string{"side control", "side-control", "kesa gatame", "north south", "north-south", "knee on belly"}},
	{"back_control", []string{"back control", "back take", "back attack", "rear naked", "body triangle", "hooks"}},
	{"turtle", []string{"turtle", "front headlock", "crucifix"}},
	{"guard_passing", []string{"guard pass", "passing the guard", "pressure pass", "torreando", "knee cut", "knee slice", "leg drag", "stack pass"}},
	{"leg_entanglement", []string{"leg lock", "leglock", "ashi garami", "saddle", "honey hole", "50/50", "fifty fifty", "outside ashi", "leg entanglement"}},
	{"standing", []string{"takedown", "wrestling", "judo", "single leg", "double leg", "standing", "grip fighting"}},
}

var giKeywords = []string{
	"gi ", " gi", "kimono", "lapel", "collar", "sleeve", "worm guard", "spats and gi",
}

var nogiKeywords = []string{
	"no-gi", "no gi", "nogi", "submission grappling", "adcc", "rashguard", "wrestling",
}

// bothKeywords force gi/no-gi applicability to "both" regardless of other
// signals.
var bothKeywords = []string{
	"gi and no-gi", "gi and no gi", "gi or no-gi", "both gi", "works in gi and",
}

// commonTechniques feed the tag list when they appear in the text.
var commonTechniques = []string{
	"armbar", "triangle", "kimura", "guillotine", "heel hook", "rear naked choke",
	"omoplata", "americana", "ezekiel", "loop choke", "cross collar choke",
	"bow and arrow", "darce", "anaconda", "north south choke", "toe hold",
	"kneebar", "ankle lock", "wrist lock", "scissor sweep", "hip bump",
	"flower sweep", "pendulum sweep", "berimbolo", "leg drag", "knee cut",
	"torreando", "single leg", "double leg", "arm drag", "snap down",
	"body lock", "butterfly sweep", "elevator sweep", "back take",
}

// maxTags caps the tag list on TaxonomyData.
const maxTags = 10
