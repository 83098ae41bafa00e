package models

import "math/rand/v2"

// covers shipped with the frontend under /public/covers
var InterviewCovers = []string{
	"/adobe.png",
	"/amazon.png",
	"/facebook.png",
	"/hostinger.png",
	"/pinterest.png",
	"/quora.png",
	"/reddit.png",
	"/skype.png",
	"/spotify.png",
	"/telegram.png",
	"/tiktok.png",
	"/yahoo.png",
}

// MaxQuestions bounds a single generated interview.
const MaxQuestions = 50

func RandomInterviewCover() string {
	return "/covers" + InterviewCovers[rand.IntN(len(InterviewCovers))]
}
