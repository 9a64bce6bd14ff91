/*
 * Copyright (c) Joseph Prichard 2025
 */

package game

import "math/rand"

// a themed collection of drawable words
type WordPack struct {
	ID    string
	Name  string
	Words []string
}

var wordPacks = []WordPack{
	{
		ID:   "animals",
		Name: "Animals",
		Words: []string{
			"alligator", "ant", "bear", "beaver", "bee", "butterfly", "camel", "cat", "cheetah", "chicken",
			"cobra", "cow", "crab", "crocodile", "deer", "dog", "dolphin", "donkey", "duck", "eagle",
			"elephant", "flamingo", "fox", "frog", "giraffe", "goat", "gorilla", "hamster", "hedgehog", "hippo",
			"horse", "jellyfish", "kangaroo", "koala", "lion", "lizard", "lobster", "monkey", "moose", "mouse",
			"octopus", "ostrich", "owl", "panda", "parrot", "peacock", "penguin", "pig", "polar bear", "rabbit",
			"raccoon", "rhino", "seahorse", "seal", "shark", "sheep", "sloth", "snail", "snake", "spider",
			"squid", "squirrel", "starfish", "swan", "tiger", "turkey", "turtle", "walrus", "whale", "wolf", "zebra",
		},
	},
	{
		ID:   "food",
		Name: "Food & Drinks",
		Words: []string{
			"apple", "avocado", "bacon", "bagel", "banana", "bread", "broccoli", "burger", "burrito", "cake",
			"candy", "carrot", "cheese", "cherry", "chocolate", "coconut", "coffee", "cookie", "corn", "croissant",
			"cupcake", "donut", "egg", "fries", "grape", "hot dog", "ice cream", "lemon", "lettuce", "lollipop",
			"mango", "milkshake", "muffin", "mushroom", "noodle", "onion", "orange", "pancake", "pasta", "peach",
			"pepper", "pickle", "pie", "pineapple", "pizza", "popcorn", "potato", "pretzel", "pumpkin", "salad",
			"sandwich", "sausage", "spaghetti", "steak", "strawberry", "sushi", "taco", "toast", "waffle", "watermelon",
		},
	},
	{
		ID:   "objects",
		Name: "Everyday Objects",
		Words: []string{
			"alarm clock", "anchor", "backpack", "balloon", "basket", "bed", "bell", "bicycle", "binoculars", "book",
			"boot", "bottle", "broom", "bucket", "camera", "candle", "chair", "compass", "computer", "crayon",
			"cup", "desk", "dice", "door", "drum", "envelope", "fence", "flashlight", "fork", "glasses",
			"guitar", "hammer", "hat", "headphones", "helmet", "hourglass", "key", "kite", "ladder", "lamp",
			"lantern", "laptop", "light bulb", "magnet", "mailbox", "map", "microphone", "mirror", "necklace", "needle",
			"newspaper", "paintbrush", "piano", "pillow", "puzzle", "robot", "rocket", "rope", "ruler", "scissors",
			"shovel", "skateboard", "snowman", "suitcase", "sword", "telescope", "tent", "toothbrush", "trophy", "trumpet",
			"umbrella", "vase", "violin", "wallet", "watch", "wheel", "whistle", "windmill", "wrench", "yoyo",
		},
	},
	{
		ID:   "actions",
		Name: "Actions",
		Words: []string{
			"applaud", "bake", "bark", "bounce", "bow", "build", "camp", "catch", "cheer", "chew",
			"clap", "climb", "cook", "cough", "crawl", "cry", "dance", "dig", "dive", "draw",
			"dream", "drink", "drive", "eat", "fish", "fly", "frown", "high five", "hop", "hug",
			"jump", "kick", "kneel", "knit", "laugh", "lift", "march", "melt", "paint", "play",
			"pray", "pull", "punch", "push", "read", "ride", "roar", "run", "sail", "scream",
			"shave", "shout", "sing", "skate", "ski", "sleep", "slide", "smile", "sneeze", "snore",
			"spin", "stretch", "surf", "sweep", "swim", "swing", "think", "throw", "tickle", "type",
			"wave", "whisper", "wink", "write", "yawn", "yell", "juggle", "mime",
		},
	},
	{
		ID:   "places",
		Name: "Places",
		Words: []string{
			"airport", "arcade", "attic", "bakery", "bank", "barn", "basement", "beach", "bridge", "cabin",
			"cafe", "castle", "cave", "cemetery", "church", "cinema", "circus", "classroom", "desert", "dungeon",
			"factory", "farm", "forest", "garage", "garden", "gym", "harbor", "hospital", "hotel", "island",
			"jail", "jungle", "kitchen", "laboratory", "lake", "library", "lighthouse", "market", "maze", "moon",
			"mountain", "museum", "office", "palace", "park", "playground", "pool", "pyramid", "restaurant", "river",
			"school", "sewer", "stadium", "subway", "swamp", "temple", "theater", "tower", "village", "volcano",
			"waterfall", "zoo",
		},
	},
	{
		ID:   "nature",
		Name: "Nature",
		Words: []string{
			"asteroid", "aurora", "blizzard", "canyon", "cliff", "cloud", "comet", "crystal", "dew", "earthquake",
			"eclipse", "fire", "flower", "fog", "fossil", "galaxy", "geyser", "glacier", "grass", "hail",
			"hurricane", "iceberg", "lava", "leaf", "lightning", "meteor", "mist", "moss", "mud", "nebula",
			"ocean", "orbit", "planet", "pond", "rain", "rainbow", "reef", "rock", "sand", "seed",
			"shadow", "sky", "snow", "star", "steam", "storm", "sun", "sunflower", "sunrise", "sunset",
			"thunder", "tornado", "tree", "tsunami", "wave", "wind",
		},
	},
	{
		ID:   "fantasy",
		Name: "Fantasy",
		Words: []string{
			"dragon", "unicorn", "wizard", "witch", "ghost", "vampire", "zombie", "mermaid", "robot", "alien",
			"superhero", "ninja", "pirate", "princess", "knight", "crown", "sword", "shield", "magic wand", "treasure",
			"castle", "dungeon", "potion", "spell", "phoenix", "griffin", "fairy", "troll", "ogre", "elf",
		},
	},
	{
		ID:   "movies",
		Name: "Movies & Shows",
		Words: []string{
			"Titanic", "Avatar", "Star Wars", "Harry Potter", "Batman", "Superman", "Spider-Man", "Iron Man",
			"Frozen", "Shrek", "Toy Story", "Finding Nemo", "Lion King", "Aladdin", "Moana", "Coco",
			"Friends", "The Office", "Breaking Bad", "Game of Thrones", "Stranger Things", "Squid Game",
			"Avengers", "Jurassic Park", "Jaws", "Ghostbusters", "Matrix", "Inception", "Sherlock",
		},
	},
}

// PackIDs returns the identifiers of every built-in word pack.
func PackIDs() []string {
	ids := make([]string, 0, len(wordPacks))
	for _, pack := range wordPacks {
		ids = append(ids, pack.ID)
	}
	return ids
}

// WordsForSelection builds the candidate pool for a room from its selected
// packs and custom words. Unknown pack ids are ignored. An empty selection,
// or a selection yielding no words, falls back to the union of all packs.
func WordsForSelection(packIDs []string, customWords []string) []string {
	selected := packIDs
	if len(selected) == 0 {
		selected = PackIDs()
	}

	var words []string
	for _, id := range selected {
		for _, pack := range wordPacks {
			if pack.ID == id {
				words = append(words, pack.Words...)
			}
		}
	}
	words = append(words, customWords...)

	if len(words) == 0 {
		for _, pack := range wordPacks {
			words = append(words, pack.Words...)
		}
	}
	return words
}

// SampleWords picks n words from the pool by shuffling a copy and truncating.
// When the pool holds fewer than n words the whole shuffled pool is returned.
func SampleWords(pool []string, n int) []string {
	shuffled := make([]string, len(pool))
	copy(shuffled, pool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
