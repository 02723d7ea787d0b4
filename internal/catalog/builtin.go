package catalog

// BuiltinScript is the bundled Trouble Brewing style script so the server is
// usable without any script files on disk. Distribution follows the official
// player-count table.
var BuiltinScript = Script{
	ID:      "trouble_brewing",
	Name:    "Trouble Brewing",
	Version: "1.0.0",
	Rules:   Rules{StorytellerWinAvailable: false},
	Distribution: map[int]map[string]int{
		5:  {TeamTownsfolk: 3, TeamOutsider: 0, TeamMinion: 1, TeamDemon: 1},
		6:  {TeamTownsfolk: 3, TeamOutsider: 1, TeamMinion: 1, TeamDemon: 1},
		7:  {TeamTownsfolk: 5, TeamOutsider: 0, TeamMinion: 1, TeamDemon: 1},
		8:  {TeamTownsfolk: 5, TeamOutsider: 1, TeamMinion: 1, TeamDemon: 1},
		9:  {TeamTownsfolk: 5, TeamOutsider: 2, TeamMinion: 1, TeamDemon: 1},
		10: {TeamTownsfolk: 7, TeamOutsider: 0, TeamMinion: 2, TeamDemon: 1},
		11: {TeamTownsfolk: 7, TeamOutsider: 1, TeamMinion: 2, TeamDemon: 1},
		12: {TeamTownsfolk: 7, TeamOutsider: 2, TeamMinion: 2, TeamDemon: 1},
		13: {TeamTownsfolk: 9, TeamOutsider: 0, TeamMinion: 3, TeamDemon: 1},
		14: {TeamTownsfolk: 9, TeamOutsider: 1, TeamMinion: 3, TeamDemon: 1},
		15: {TeamTownsfolk: 9, TeamOutsider: 2, TeamMinion: 3, TeamDemon: 1},
	},
	Roles: []Role{
		{ID: "washerwoman", Name: "Washerwoman", Team: TeamTownsfolk, Tags: []string{"first-night", "info"},
			Localized:   map[string]string{"zh_CN": "洗衣妇"},
			Description: "On the first night, you learn that one of two players is a particular Townsfolk."},
		{ID: "librarian", Name: "Librarian", Team: TeamTownsfolk, Tags: []string{"first-night", "info"},
			Localized:   map[string]string{"zh_CN": "图书管理员"},
			Description: "On the first night, you learn that one of two players is a particular Outsider, or that none are in play."},
		{ID: "investigator", Name: "Investigator", Team: TeamTownsfolk, Tags: []string{"first-night", "info"},
			Localized:   map[string]string{"zh_CN": "调查员"},
			Description: "On the first night, you learn that one of two players is a particular Minion, or that none are in play."},
		{ID: "chef", Name: "Chef", Team: TeamTownsfolk, Tags: []string{"first-night", "info"},
			Localized:   map[string]string{"zh_CN": "厨师"},
			Description: "On the first night, you learn how many pairs of evil players are sitting next to each other."},
		{ID: "empath", Name: "Empath", Team: TeamTownsfolk, Tags: []string{"nightly", "info"},
			Localized:   map[string]string{"zh_CN": "共情者"},
			Description: "Each night, you learn how many of your two living neighbours are evil."},
		{ID: "fortune_teller", Name: "Fortune Teller", Team: TeamTownsfolk, Tags: []string{"nightly", "info"},
			Localized:   map[string]string{"zh_CN": "占卜师"},
			Description: "Each night, choose two players: you learn if either is the Demon. One good player registers as a Demon to you."},
		{ID: "undertaker", Name: "Undertaker", Team: TeamTownsfolk, Tags: []string{"nightly", "info"},
			Localized:   map[string]string{"zh_CN": "送葬者"},
			Description: "Each night except the first, you learn which role died by execution today."},
		{ID: "monk", Name: "Monk", Team: TeamTownsfolk, Tags: []string{"nightly", "protect"},
			Localized:   map[string]string{"zh_CN": "僧侣"},
			Description: "Each night except the first, choose another player: the Demon's ability has no effect on them tonight."},
		{ID: "ravenkeeper", Name: "Ravenkeeper", Team: TeamTownsfolk, Tags: []string{"reaction"},
			Localized:   map[string]string{"zh_CN": "守鸦者"},
			Description: "If you die at night, you are woken to choose a player: you learn their role."},
		{ID: "virgin", Name: "Virgin", Team: TeamTownsfolk, Tags: []string{"day", "info"},
			Localized:   map[string]string{"zh_CN": "贞女"},
			Description: "The first time you are nominated, if the nominator is a Townsfolk, they are executed immediately."},
		{ID: "slayer", Name: "Slayer", Team: TeamTownsfolk, Tags: []string{"day", "attack"},
			Localized:   map[string]string{"zh_CN": "猎手"},
			Description: "Once per game during the day, publicly choose a player: if they are the Demon, they die."},
		{ID: "soldier", Name: "Soldier", Team: TeamTownsfolk, Tags: []string{"passive"},
			Localized:   map[string]string{"zh_CN": "士兵"},
			Description: "You are safe from the Demon."},
		{ID: "mayor", Name: "Mayor", Team: TeamTownsfolk, Tags: []string{"endgame"},
			Localized:   map[string]string{"zh_CN": "市长"},
			Description: "If only three players live and no execution occurs, your team wins. If you die at night, another player might die instead."},
		{ID: "butler", Name: "Butler", Team: TeamOutsider, Tags: []string{"nightly"},
			Localized:   map[string]string{"zh_CN": "管家"},
			Description: "Each night, choose a player: tomorrow you may only vote if they are voting too."},
		{ID: "drunk", Name: "Drunk", Team: TeamOutsider, Tags: []string{"secret"},
			Localized:   map[string]string{"zh_CN": "酒鬼"},
			Description: "You do not know you are the Drunk. You think you are a Townsfolk, but you are not.",
			Slots: []AttachmentSlot{{
				ID:         "drunk_false_role",
				Label:      "Believed role",
				Count:      1,
				TeamFilter: []string{TeamTownsfolk},
				OwnerView:  OwnerViewReplacePrimary,
			}}},
		{ID: "recluse", Name: "Recluse", Team: TeamOutsider, Tags: []string{"secret"},
			Localized:   map[string]string{"zh_CN": "隐士"},
			Description: "You might register as evil, and as a Minion or Demon, even if dead."},
		{ID: "saint", Name: "Saint", Team: TeamOutsider, Tags: []string{"day"},
			Localized:   map[string]string{"zh_CN": "圣徒"},
			Description: "If you die by execution, your team loses."},
		{ID: "poisoner", Name: "Poisoner", Team: TeamMinion, Tags: []string{"nightly", "attack"},
			Localized:   map[string]string{"zh_CN": "投毒者"},
			Description: "Each night, choose a player: they are poisoned tonight and tomorrow day."},
		{ID: "spy", Name: "Spy", Team: TeamMinion, Tags: []string{"nightly", "info"},
			Localized:   map[string]string{"zh_CN": "间谍"},
			Description: "Each night, you see the Grimoire. You might register as good, and as a Townsfolk or Outsider, even if dead."},
		{ID: "scarlet_woman", Name: "Scarlet Woman", Team: TeamMinion, Tags: []string{"passive"},
			Localized:   map[string]string{"zh_CN": "猩红女郎"},
			Description: "If there are five or more living players and the Demon dies, you become the Demon."},
		{ID: "baron", Name: "Baron", Team: TeamMinion, Tags: []string{"setup"},
			Localized:   map[string]string{"zh_CN": "男爵"},
			Description: "There are two extra Outsiders in play."},
		{ID: "imp", Name: "Imp", Team: TeamDemon, Tags: []string{"nightly", "attack"},
			Localized:   map[string]string{"zh_CN": "小恶魔"},
			Description: "Each night except the first, choose a player: they die. If you kill yourself this way, a Minion becomes the Imp.",
			Slots: []AttachmentSlot{{
				ID:         "demon_bluff",
				Label:      "Demon bluffs",
				Count:      3,
				TeamFilter: []string{TeamTownsfolk, TeamOutsider},
			}}},
	},
}
