package nbastats

// Static NBA team registry. Team IDs are stable across seasons.
var teamsByID = map[int]string{
	1610612737: "ATL",
	1610612738: "BOS",
	1610612751: "BKN",
	1610612766: "CHA",
	1610612741: "CHI",
	1610612739: "CLE",
	1610612742: "DAL",
	1610612743: "DEN",
	1610612765: "DET",
	1610612744: "GSW",
	1610612745: "HOU",
	1610612754: "IND",
	1610612746: "LAC",
	1610612747: "LAL",
	1610612763: "MEM",
	1610612748: "MIA",
	1610612749: "MIL",
	1610612750: "MIN",
	1610612740: "NOP",
	1610612752: "NYK",
	1610612760: "OKC",
	1610612753: "ORL",
	1610612755: "PHI",
	1610612756: "PHX",
	1610612757: "POR",
	1610612758: "SAC",
	1610612759: "SAS",
	1610612761: "TOR",
	1610612762: "UTA",
	1610612764: "WAS",
}

var teamNames = map[string]string{
	"ATL": "Atlanta Hawks",
	"BOS": "Boston Celtics",
	"BKN": "Brooklyn Nets",
	"CHA": "Charlotte Hornets",
	"CHI": "Chicago Bulls",
	"CLE": "Cleveland Cavaliers",
	"DAL": "Dallas Mavericks",
	"DEN": "Denver Nuggets",
	"DET": "Detroit Pistons",
	"GSW": "Golden State Warriors",
	"HOU": "Houston Rockets",
	"IND": "Indiana Pacers",
	"LAC": "LA Clippers",
	"LAL": "Los Angeles Lakers",
	"MEM": "Memphis Grizzlies",
	"MIA": "Miami Heat",
	"MIL": "Milwaukee Bucks",
	"MIN": "Minnesota Timberwolves",
	"NOP": "New Orleans Pelicans",
	"NYK": "New York Knicks",
	"OKC": "Oklahoma City Thunder",
	"ORL": "Orlando Magic",
	"PHI": "Philadelphia 76ers",
	"PHX": "Phoenix Suns",
	"POR": "Portland Trail Blazers",
	"SAC": "Sacramento Kings",
	"SAS": "San Antonio Spurs",
	"TOR": "Toronto Raptors",
	"UTA": "Utah Jazz",
	"WAS": "Washington Wizards",
}

// TeamAbbr maps a team ID to its abbreviation. Unknown IDs map to "".
func TeamAbbr(teamID int) string { return teamsByID[teamID] }

// TeamName maps an abbreviation to the full franchise name.
func TeamName(abbr string) string { return teamNames[abbr] }
