package kana

// Geminate is the small tsu. It never fuses with a neighbour; its accepted
// spellings borrow the following token's initial consonant (see patterns.go).
const Geminate = "っ"

// LongVowelMark excludes a word from the active pool but not the raw pool.
const LongVowelMark = "ー"

// smallFuse is the set of reduced characters that fuse with the preceding
// base character into one token.
var smallFuse = map[rune]struct{}{
	'ぁ': {}, 'ぃ': {}, 'ぅ': {}, 'ぇ': {}, 'ぉ': {},
	'ゃ': {}, 'ゅ': {}, 'ょ': {}, 'ゎ': {},
}

// table maps each syllable to its accepted ASCII spellings. Order matters:
// the first entry is the canonical completion used for hinting.
var table = map[string][]string{
	"あ": {"a"},
	"い": {"i", "yi"},
	"う": {"u", "wu", "whu"},
	"え": {"e"},
	"お": {"o"},

	"か": {"ka", "ca"},
	"き": {"ki"},
	"く": {"ku", "cu", "qu"},
	"け": {"ke"},
	"こ": {"ko", "co"},

	"さ": {"sa"},
	"し": {"shi", "si", "ci"},
	"す": {"su"},
	"せ": {"se", "ce"},
	"そ": {"so"},

	"た": {"ta"},
	"ち": {"chi", "ti"},
	"つ": {"tsu", "tu"},
	"て": {"te"},
	"と": {"to"},

	"な": {"na"},
	"に": {"ni"},
	"ぬ": {"nu"},
	"ね": {"ne"},
	"の": {"no"},

	"は": {"ha"},
	"ひ": {"hi"},
	"ふ": {"fu", "hu"},
	"へ": {"he"},
	"ほ": {"ho"},

	"ま": {"ma"},
	"み": {"mi"},
	"む": {"mu"},
	"め": {"me"},
	"も": {"mo"},

	"や": {"ya"},
	"ゆ": {"yu"},
	"よ": {"yo"},

	"ら": {"ra"},
	"り": {"ri"},
	"る": {"ru"},
	"れ": {"re"},
	"ろ": {"ro"},

	"わ": {"wa"},
	"を": {"wo"},
	"ん": {"n", "nn", "xn"},

	"が": {"ga"},
	"ぎ": {"gi"},
	"ぐ": {"gu"},
	"げ": {"ge"},
	"ご": {"go"},

	"ざ": {"za"},
	"じ": {"ji", "zi"},
	"ず": {"zu"},
	"ぜ": {"ze"},
	"ぞ": {"zo"},

	"だ": {"da"},
	"ぢ": {"di"},
	"づ": {"du"},
	"で": {"de"},
	"ど": {"do"},

	"ば": {"ba"},
	"び": {"bi"},
	"ぶ": {"bu"},
	"べ": {"be"},
	"ぼ": {"bo"},

	"ぱ": {"pa"},
	"ぴ": {"pi"},
	"ぷ": {"pu"},
	"ぺ": {"pe"},
	"ぽ": {"po"},

	"ぁ": {"xa", "la"},
	"ぃ": {"xi", "li"},
	"ぅ": {"xu", "lu"},
	"ぇ": {"xe", "le"},
	"ぉ": {"xo", "lo"},
	"ゃ": {"xya", "lya"},
	"ゅ": {"xyu", "lyu"},
	"ょ": {"xyo", "lyo"},
	"ゎ": {"xwa", "lwa"},
	"っ": {"xtu", "ltu", "xtsu", "ltsu"},

	"きゃ": {"kya"},
	"きゅ": {"kyu"},
	"きょ": {"kyo"},
	"しゃ": {"sha", "sya"},
	"しゅ": {"shu", "syu"},
	"しょ": {"sho", "syo"},
	"しぇ": {"she", "sye"},
	"ちゃ": {"cha", "tya", "cya"},
	"ちゅ": {"chu", "tyu", "cyu"},
	"ちょ": {"cho", "tyo", "cyo"},
	"ちぇ": {"che", "tye"},
	"にゃ": {"nya"},
	"にゅ": {"nyu"},
	"にょ": {"nyo"},
	"ひゃ": {"hya"},
	"ひゅ": {"hyu"},
	"ひょ": {"hyo"},
	"みゃ": {"mya"},
	"みゅ": {"myu"},
	"みょ": {"myo"},
	"りゃ": {"rya"},
	"りゅ": {"ryu"},
	"りょ": {"ryo"},
	"ぎゃ": {"gya"},
	"ぎゅ": {"gyu"},
	"ぎょ": {"gyo"},
	"じゃ": {"ja", "jya", "zya"},
	"じゅ": {"ju", "jyu", "zyu"},
	"じょ": {"jo", "jyo", "zyo"},
	"じぇ": {"je", "jye", "zye"},
	"ぢゃ": {"dya"},
	"ぢゅ": {"dyu"},
	"ぢょ": {"dyo"},
	"びゃ": {"bya"},
	"びゅ": {"byu"},
	"びょ": {"byo"},
	"ぴゃ": {"pya"},
	"ぴゅ": {"pyu"},
	"ぴょ": {"pyo"},
	"ふぁ": {"fa"},
	"ふぃ": {"fi"},
	"ふぇ": {"fe"},
	"ふぉ": {"fo"},
	"うぃ": {"wi"},
	"うぇ": {"we"},
	"うぉ": {"who"},
	"てぃ": {"thi"},
	"でぃ": {"dhi"},
	"でゅ": {"dhu"},
}

// Patterns returns the raw table entry for a syllable, nil when unknown.
func Patterns(syllable string) []string {
	return table[syllable]
}
