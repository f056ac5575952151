package models

// FavoriteTeam is a catalog entry users can pick as their crest.
type FavoriteTeam struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ImageURL string `json:"image_url"`
}

var favoriteTeams = []FavoriteTeam{
	{Name: "San Lorenzo", Slug: "san-lorenzo", ImageURL: "https://i.postimg.cc/VNq34HWJ/san-lorenzo.png"},
	{Name: "River", Slug: "river", ImageURL: "https://i.postimg.cc/66MxDgJR/river-plate.png"},
	{Name: "Boca", Slug: "boca", ImageURL: "https://i.postimg.cc/0NRTYqDg/boca.png"},
	{Name: "Independiente", Slug: "independiente", ImageURL: "https://i.postimg.cc/50fDrqsn/independiente-svg.png"},
	{Name: "Racing", Slug: "racing", ImageURL: "https://i.postimg.cc/NfLvYDBn/racing.png"},
	{Name: "Velez", Slug: "velez", ImageURL: "https://i.postimg.cc/90Sj7wcV/velez.png"},
	{Name: "Chicago", Slug: "chicago", ImageURL: "https://i.postimg.cc/4x0X0K4J/chicago.png"},
	{Name: "Roma", Slug: "roma", ImageURL: "https://i.postimg.cc/Kvrvbb4R/roma.png"},
	{Name: "Napoli", Slug: "napoli", ImageURL: "https://i.postimg.cc/wBJBsLD1/napoli.png"},
	{Name: "Lyon", Slug: "lyon", ImageURL: "https://placehold.co/128x128?text=Lyon"},
	{Name: "Inter", Slug: "inter", ImageURL: "https://placehold.co/128x128?text=Inter"},
	{Name: "Barcelona", Slug: "barcelona", ImageURL: "https://placehold.co/128x128?text=Barcelona"},
	{Name: "Real Madrid", Slug: "real-madrid", ImageURL: "https://placehold.co/128x128?text=Real+Madrid"},
	{Name: "PSG", Slug: "psg", ImageURL: "https://placehold.co/128x128?text=PSG"},
	{Name: "Manchester City", Slug: "manchester-city", ImageURL: "https://placehold.co/128x128?text=Man+City"},
	{Name: "Manchester United", Slug: "manchester-united", ImageURL: "https://placehold.co/128x128?text=Man+United"},
	{Name: "Arsenal", Slug: "arsenal", ImageURL: "https://placehold.co/128x128?text=Arsenal"},
}

// FavoriteTeams returns a copy of the static catalog.
func FavoriteTeams() []FavoriteTeam {
	out := make([]FavoriteTeam, len(favoriteTeams))
	copy(out, favoriteTeams)
	return out
}

// IsValidFavoriteTeamSlug reports whether the slug exists in the catalog.
func IsValidFavoriteTeamSlug(slug string) bool {
	for _, team := range favoriteTeams {
		if team.Slug == slug {
			return true
		}
	}
	return false
}
