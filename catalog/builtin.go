package catalog

// MemorexMCR5221 is the button table of the Memorex MCR 5221 audio remote.
var MemorexMCR5221 = build("Memorex", "MCR 5221", "memorex_mcr5221", []Button{
	{0x2525609F, "Power"},
	{0x25257887, "CD door"},
	{0x2525807F, "1"},
	{0x2525906F, "2"},
	{0x25258877, "3"},
	{0x25259867, "4"},
	{0x252540BF, "5"},
	{0x252550AF, "6"},
	{0x252548B7, "7"},
	{0x252558A7, "8"},
	{0x2525C03F, "9"},
	{0x2525D02F, "0"},
	{0x2525C837, "Over"},
	{0x252505FA, "Mute"},
	{0x252530CF, "Stop"},
	{0x252520DF, "Play / Pause"},
	{0x2525B04F, "Rewind / Down"},
	{0x2525A05F, "Fast forward / Up"},
	{0x252504FB, "Volume up"},
	{0x252506F9, "Volume down"},
	{0x252538C7, "Random / Down"},
	{0x2525D827, "Repeat / Up"},
	{0x252528D7, "Set / Memory / Clock"},
	{0x2525708F, "Tuner"},
	{0x25256897, "CD"},
	{0x2525B847, "Time"},
	{0x2525A857, "Display"},
})

// SamsungBN5900673A is the button table of the Samsung BN59-00673A TV remote.
var SamsungBN5900673A = build("Samsung", "BN59-00673A", "samsung_bn5900673a", []Button{
	{0xE0E040BF, "Power"},
	{0xE0E0D827, "TV"},
	{0xE0E020DF, "1"},
	{0xE0E0A05F, "2"},
	{0xE0E0609F, "3"},
	{0xE0E010EF, "4"},
	{0xE0E0906F, "5"},
	{0xE0E050AF, "6"},
	{0xE0E030CF, "7"},
	{0xE0E0B04F, "8"},
	{0xE0E0708F, "9"},
	{0xE0E08877, "0"},
	{0xE0E0C43B, "-"},
	{0xE0E0C837, "Pre-Ch"},
	{0xE0E0F00F, "Mute"},
	{0xE0E0807F, "Source"},
	{0xE0E0E01F, "Volume Up"},
	{0xE0E0D02F, "Volume Down"},
	{0xE0E048B7, "Channel Up"},
	{0xE0E008F7, "Channel Down"},
	{0xE0E058A7, "Menu"},
	{0xE0E0D629, "Ch List"},
	{0xE0E031CE, "W. Link"},
	{0xE0E0D22D, "Tools"},
	{0xE0E01AE5, "Return"},
	{0xE0E0F807, "Info"},
	{0xE0E0B44B, "Exit"},
	{0xE0E006F9, "Up"},
	{0xE0E08679, "Down"},
	{0xE0E0A659, "Left"},
	{0xE0E046B9, "Right"},
	{0xE0E016E9, "Enter"},
	{0xE0E036C9, "Red"},
	{0xE0E028D7, "Green"},
	{0xE0E0A857, "Yellow"},
	{0xE0E06897, "Blue"},
	{0xE0E0A45B, "CC"},
	{0xE0E000FF, "MTS"},
	{0xE0E0C639, "DMA"},
	{0xE0E029D6, "E.Mode"},
	{0xE0E07C83, "P.Size"},
	{0xE0E022DD, "Fav.Ch."},
	{0xE0E0A25D, "Rewind"},
	{0xE0E052AD, "Pause"},
	{0xE0E012ED, "Forward"},
	{0xE0E0E21D, "Play"},
	{0xE0E0629D, "Stop"},
})
