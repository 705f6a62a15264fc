package category

// DefaultStopWords are dropped by Keywords. French first: the storefront is French.
var DefaultStopWords = []string{
	// pronouns
	"je", "tu", "il", "elle", "on", "nous", "vous", "ils", "elles", "moi", "toi", "me", "te",
	// articles and determiners
	"le", "la", "les", "un", "une", "des", "du", "de", "au", "aux", "ce", "cet", "cette", "ces",
	"mon", "ma", "mes", "ton", "ta", "tes", "son", "sa", "ses", "notre", "votre", "leur",
	// prepositions and conjunctions
	"pour", "avec", "sans", "dans", "sur", "sous", "par", "et", "ou", "mais", "donc", "qui", "que", "quoi",
	// query verbs
	"cherche", "recherche", "veux", "voudrais", "voulais", "aimerais", "trouver", "trouve", "acheter",
	"besoin", "montre", "montrez", "avez", "auriez", "est", "sont", "quelque", "chose",
	// english
	"the", "and", "for", "with", "want", "need", "looking", "find", "show", "some", "please",
}

// Default returns the built-in marketplace dictionary.
// Keywords are substrings: keep them long enough not to fire inside unrelated
// words ("table" would match "confortable").
func Default() *Dictionary {
	d, err := New([]Entry{
		{Name: "sac", Catalog: "Accessoires", Keywords: []string{
			"sac", "sacoche", "cartable", "besace", "poche", "ceinture", "portefeuille", "lunettes",
		}},
		{Name: "chaussures", Catalog: "Chaussures", Keywords: []string{
			"chaussure", "basket", "sandale", "botte", "escarpin", "mocassin", "sneaker",
		}},
		{Name: "vetements", Catalog: "Vêtements", Keywords: []string{
			"robe", "chemise", "pantalon", "jean", "veste", "manteau", "pull", "t-shirt", "jupe", "vêtement",
		}},
		{Name: "bijoux", Catalog: "Bijoux", Keywords: []string{
			"bijou", "collier", "bracelet", "bague", "boucle d'oreille", "pendentif",
		}},
		{Name: "electronique", Catalog: "Électronique", Keywords: []string{
			"téléphone", "smartphone", "ordinateur", "casque", "écouteur", "tablette", "enceinte",
		}},
		{Name: "mobilier", Catalog: "Mobilier", Keywords: []string{
			"chaise", "canapé", "fauteuil", "armoire", "étagère", "commode", "tabouret", "matelas",
		}},
		{Name: "beaute", Catalog: "Beauté", Keywords: []string{
			"parfum", "crème", "maquillage", "rouge à lèvres", "shampoing", "savon",
		}},
	}, nil)
	if err != nil {
		panic("invalid default category dictionary: " + err.Error())
	}
	return d
}
