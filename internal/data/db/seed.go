package db

import (
	"context"
	"fmt"

	types "github.com/yungbote/acadboost-backend/internal/domain"
	"gorm.io/gorm"
)

// CatalogSeed is the starting course catalogue.
func CatalogSeed() []*types.Course {
	return []*types.Course{
		{Slug: "introduction-to-python", Title: "Introduction to Python", Category: "Programming", ImageKey: "python", Position: 1,
			Description: "Learn the fundamentals of Python, one of the most popular programming languages."},
		{Slug: "advanced-calculus", Title: "Advanced Calculus", Category: "Mathematics", ImageKey: "calculus", Position: 2,
			Description: "Dive deep into the world of calculus, from limits to multivariable integration."},
		{Slug: "the-history-of-art", Title: "The History of Art", Category: "Arts & Humanities", ImageKey: "art", Position: 3,
			Description: "Explore major art movements and masterpieces from ancient times to the present day."},
		{Slug: "machine-learning-basics", Title: "Machine Learning Basics", Category: "Programming", ImageKey: "machine-learning", Position: 4,
			Description: "Get started with machine learning concepts, algorithms, and practical applications."},
		{Slug: "creative-writing-workshop", Title: "Creative Writing Workshop", Category: "Arts & Humanities", ImageKey: "writing", Position: 5,
			Description: "Hone your storytelling skills and develop your unique voice as a writer."},
		{Slug: "data-structures-and-algorithms", Title: "Data Structures & Algorithms", Category: "Programming", ImageKey: "dsa", Position: 6,
			Description: "Master essential data structures and algorithms to write efficient code."},
		{Slug: "linear-algebra", Title: "Linear Algebra", Category: "Mathematics", ImageKey: "algebra", Position: 7,
			Description: "Understand vectors, matrices, and linear transformations and their applications."},
		{Slug: "digital-photography", Title: "Digital Photography", Category: "Arts & Humanities", ImageKey: "photography", Position: 8,
			Description: "Learn how to take stunning photos with your digital camera, from composition to editing."},
	}
}

// SeedCatalog inserts the starting catalogue when the course table is empty.
func SeedCatalog(ctx context.Context, db *gorm.DB) (int, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&types.Course{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	courses := CatalogSeed()
	if err := db.WithContext(ctx).Create(&courses).Error; err != nil {
		return 0, fmt.Errorf("seed courses: %w", err)
	}
	return len(courses), nil
}
