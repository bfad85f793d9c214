package dna

// Trait tables are indexed by gene value. Order is part of the on-chain
// encoding and must never be rearranged; new traits are appended.

var backgroundTraits = TraitTable{
	"Abyss",
	"Aurora",
	"Badlands",
	"Binary Rain",
	"Cinder",
	"Cobalt",
	"Crimson Haze",
	"Dune",
	"Eclipse",
	"Frost",
	"Gridlock",
	"Hive",
	"Ion Storm",
	"Jade",
	"Lunar",
	"Magma",
	"Neon City",
	"Nebula",
	"Obsidian",
	"Overgrowth",
	"Rust Belt",
	"Sandstorm",
	"Solar Flare",
	"Static",
	"Toxic Bloom",
	"Twilight",
	"Void",
}

var skinTraits = TraitTable{
	"Plasma",
	"Albino",
	"Bronze",
	"Chrome",
	"Circuit",
	"Crystal",
	"Ember",
	"Glitch",
	"Gold",
	"Jade",
	"Magma",
	"Obsidian",
	"Onyx",
	"Quartz",
	"Rust",
	"Slate",
	"Toxic",
	"Zombie",
}

var headTraits = TraitTable{
	"Antenna",
	"Bandana",
	"Beanie",
	"Buzz Cut",
	"Cowboy Hat",
	"Crown",
	"Dreadlocks",
	"Fez",
	"Flat Top",
	"Halo",
	"Headphones",
	"Hood",
	"Horns",
	"Mohawk",
	"Pilot Cap",
	"Pompadour",
	"Samurai Knot",
	"Snapback",
	"Spikes",
	"Top Hat",
	"Traffic Cone",
	"Viking Helm",
	"Wizard Hat",
	"None",
}

var eyesTraits = TraitTable{
	"Angry",
	"Bionic",
	"Bloodshot",
	"Closed",
	"Cyclops",
	"Dizzy",
	"Glowing",
	"Heart",
	"Hypnotic",
	"Laser",
	"Monocle Scar",
	"Pixel",
	"Sleepy",
	"Squint",
	"Starry",
	"Suspicious",
	"Teary",
	"Third Eye",
	"Visor Glow",
	"Wide",
	"Wink",
	"X",
}

var mouthTraits = TraitTable{
	"Bubblegum",
	"Buck Teeth",
	"Cigar",
	"Drool",
	"Fangs",
	"Frown",
	"Gold Grill",
	"Grin",
	"Grimace",
	"Kiss",
	"Mask Vent",
	"Mustache",
	"Neutral",
	"Open",
	"Pacifier",
	"Pipe",
	"Rebreather",
	"Smirk",
	"Stitched",
	"Tongue Out",
	"Toothpick",
	"Vampire",
	"Zipper",
}

var outfitTraits = TraitTable{
	"Apron",
	"Astronaut Suit",
	"Ballistic Vest",
	"Bathrobe",
	"Biker Jacket",
	"Blazer",
	"Bomber Jacket",
	"Boxing Robe",
	"Camo Shirt",
	"Cardigan",
	"Chef Coat",
	"Chainmail",
	"Cloak",
	"Coveralls",
	"Cyber Jacket",
	"Denim Vest",
	"Diving Suit",
	"Dress Shirt",
	"Exosuit",
	"Firefighter Coat",
	"Flannel",
	"Flight Suit",
	"Football Jersey",
	"Gi",
	"Hawaiian Shirt",
	"Hazmat Suit",
	"Hi-Vis Vest",
	"Hoodie",
	"Hospital Gown",
	"Kimono",
	"Lab Coat",
	"Leather Jacket",
	"Letterman Jacket",
	"Mech Harness",
	"Military Dress",
	"Ninja Garb",
	"Overalls",
	"Parka",
	"Pilot Jacket",
	"Pinstripe Suit",
	"Poncho",
	"Prison Jumpsuit",
	"Puffer Vest",
	"Racing Suit",
	"Raincoat",
	"Referee Shirt",
	"Robe",
	"Samurai Armor",
	"Scrubs",
	"Space Cadet",
	"Sports Bra",
	"Straitjacket",
	"Striped Tee",
	"Suspenders",
	"Sweater Vest",
	"Tactical Rig",
	"Tank Top",
	"Toga",
	"Tracksuit",
	"Trench Coat",
	"Tuxedo",
	"Turtleneck",
	"Tweed Jacket",
	"Varsity Sweater",
	"Vest",
	"Wetsuit",
	"Windbreaker",
	"Wizard Robe",
	"Wool Coat",
	"Work Shirt",
	"Wrestling Singlet",
	"Yellow Slicker",
	"Zip Hoodie",
	"Zoot Suit",
	"None",
}
