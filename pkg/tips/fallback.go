package tips

var fallbackMessages = []string{
	"Every small step is a giant victory. Your determination is your greatest strength.",
	"Parkinson's is part of your journey, but it does not define who you are.",
	"Breathe deeply. Today is a gift, live it fully.",
	"Your resilience is inspiring. One day at a time, with courage.",
	"Remember to be kind to yourself today. You are doing your best.",
	"Balance comes from within. Focus on what you can do today.",
	"Your strength is not measured by steady hands, but by a steady heart.",
	"Today is a good day to focus on what brings you joy. Small pleasures heal.",
	"Keep moving. Every step counts toward your independence.",
	"Your mind is powerful. Use it to picture your strength.",
	"Patience with your own body is a deep form of self-love.",
	"Do not compare yourself with others; celebrate your own progress.",
	"The tremor may be there, but your will to carry on is far greater.",
	"A short walk, a stretch, a song. Movement is medicine.",
	"Ask for help when you need it. Letting others in is a strength.",
	"Laughter loosens more than muscles. Find something to smile about today.",
	"Your routine is your ally. Taking your medication on time is an act of care.",
	"Rest is not giving up. It is how you gather strength for tomorrow.",
	"Celebrate what went well today, however small.",
	"You are more than a diagnosis. You are a whole person with a full story.",
}
