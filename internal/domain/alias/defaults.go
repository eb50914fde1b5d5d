package alias

// DefaultGroups lists club identities across sponsor renames and sister
// competitions. Replaced wholesale by ALIAS_GROUPS_FILE when set.
func DefaultGroups() [][]string {
	return [][]string{
		{"stormers", "western province"},
		{"bulls", "blue bulls"},
		{"sharks", "natal sharks"},
		{"lions", "golden lions"},
		{"cheetahs", "free state cheetahs"},
		{"munster"},
		{"leinster"},
		{"ulster"},
		{"connacht"},
		{"glasgow", "glasgow warriors"},
		{"edinburgh"},
		{"cardiff", "cardiff blues"},
		{"dragons", "newport gwent dragons"},
		{"scarlets", "llanelli scarlets"},
		{"ospreys"},
		{"benetton", "benetton treviso"},
		{"zebre", "zebre parma", "zebre rugby club"},
		{"waratahs", "nsw waratahs"},
		{"brumbies"},
		{"reds", "queensland reds"},
		{"rebels"},
		{"force", "western force"},
		{"blues", "auckland blues"},
		{"chiefs", "waikato chiefs"},
		{"crusaders"},
		{"highlanders"},
		{"hurricanes"},
		{"harlequins", "quins"},
		{"saracens"},
		{"exeter", "exeter chiefs"},
		{"leicester", "leicester tigers"},
		{"northampton", "northampton saints"},
		{"bath"},
		{"sale", "sale sharks"},
		{"gloucester"},
		{"bristol"},
		{"newcastle", "newcastle falcons"},
		{"wasps"},
		{"worcester"},
		{"bordeaux", "union bordeaux-bègles", "bordeaux-begles"},
		{"toulouse", "stade toulousain"},
		{"clermont", "clermont auvergne", "asm clermont"},
		{"racing 92", "racing metro"},
		{"toulon"},
		{"la rochelle"},
		{"lyon"},
		{"castres"},
		{"brive"},
		{"pau"},
		{"montpellier"},
		{"bayonne"},
		{"perpignan"},
		{"agen"},
		{"colomiers"},
		{"narbonne"},
		{"beziers"},
		{"dax"},
	}
}
