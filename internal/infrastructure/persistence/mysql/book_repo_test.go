package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/pkg/filter"
	"github.com/xiebiao/bookshop/pkg/paginator"
)

func TestBookRepository_CreateAndFind_RoundTrip(t *testing.T) {
	repo := NewBookRepository(newTestDB(t))
	ctx := context.Background()

	b := newTestBook("0134190440", "The Go Programming Language",
		[]string{"Alan A. A. Donovan", "Brian W. Kernighan"})
	b.Rating = &book.Rating{Average: 4.7, Votes: 1500, Reviews: 320}

	require.NoError(t, repo.Create(ctx, b))
	require.NotZero(t, b.ID)

	got, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)

	assert.Equal(t, b.Title, got.Title)
	assert.Equal(t, b.Authors, got.Authors)
	assert.Equal(t, b.ISBN, got.ISBN)
	assert.Equal(t, b.ISBN13, got.ISBN13)
	assert.Equal(t, b.Language, got.Language)
	assert.Equal(t, b.Pages, got.Pages)
	assert.Equal(t, b.Publisher, got.Publisher)
	assert.Equal(t, b.Price, got.Price)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 4.7, got.Rating.Average)
	assert.Equal(t, 1500, got.Rating.Votes)
	assert.Equal(t, 320, got.Rating.Reviews)
}

func TestBookRepository_Create_DuplicateISBN(t *testing.T) {
	repo := NewBookRepository(newTestDB(t))
	ctx := context.Background()

	first := newTestBook("0134468591", "First", []string{"A"})
	require.NoError(t, repo.Create(ctx, first))

	second := newTestBook("0134468591", "Second", []string{"B"})
	err := repo.Create(ctx, second)
	assert.ErrorIs(t, err, book.ErrISBNDuplicate)

	// 第一本不受影响
	got, err := repo.FindByISBN(ctx, "0134468591")
	require.NoError(t, err)
	assert.Equal(t, "First", got.Title)
	assert.Equal(t, first.ID, got.ID)
}

func TestBookRepository_FindByID_NotFound(t *testing.T) {
	repo := NewBookRepository(newTestDB(t))

	_, err := repo.FindByID(context.Background(), 999)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestBookRepository_FindByIDs_SkipsMissing(t *testing.T) {
	repo := NewBookRepository(newTestDB(t))
	ctx := context.Background()

	b1 := newTestBook("1111111111", "One", []string{"A"})
	b2 := newTestBook("2222222222", "Two", []string{"B"})
	require.NoError(t, repo.Create(ctx, b1))
	require.NoError(t, repo.Create(ctx, b2))

	books, err := repo.FindByIDs(ctx, []uint{b1.ID, b2.ID, 999})
	require.NoError(t, err)
	assert.Len(t, books, 2)
}

func TestBookRepository_List_Pagination(t *testing.T) {
	repo := NewBookRepository(newTestDB(t))
	ctx := context.Background()

	isbns := []string{"1000000001", "1000000002", "1000000003", "1000000004", "1000000005"}
	for i, isbn := range isbns {
		require.NoError(t, repo.Create(ctx, newTestBook(isbn, "Book", []string{"A"})), "i=%d", i)
	}

	// page是行偏移,per_page是条数上限
	p, err := paginator.New(1, 2)
	require.NoError(t, err)
	books, err := repo.List(ctx, false, p)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "1000000002", books[0].ISBN)

	// per_page=0表示不限条数,只应用偏移
	unlimited, err := paginator.New(2, 0)
	require.NoError(t, err)
	books, err = repo.List(ctx, false, unlimited)
	require.NoError(t, err)
	assert.Len(t, books, 3)

	// 不传分页器返回全部
	books, err = repo.List(ctx, false, nil)
	require.NoError(t, err)
	assert.Len(t, books, 5)
}

func TestBookRepository_List_IncludeRatings(t *testing.T) {
	repo := NewBookRepository(newTestDB(t))
	ctx := context.Background()

	rated := newTestBook("3333333333", "Rated", []string{"A"})
	rated.Rating = &book.Rating{Average: 4.0, Votes: 10, Reviews: 2}
	unrated := newTestBook("4444444444", "Unrated", []string{"B"})
	require.NoError(t, repo.Create(ctx, rated))
	require.NoError(t, repo.Create(ctx, unrated))

	books, err := repo.List(ctx, true, nil)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.NotNil(t, books[0].Rating)
	assert.Nil(t, books[1].Rating)

	// includeRatings=false时不装配评分
	books, err = repo.List(ctx, false, nil)
	require.NoError(t, err)
	assert.Nil(t, books[0].Rating)
}

func TestBookRepository_Search_SubstringFilters(t *testing.T) {
	repo := NewBookRepository(newTestDB(t))
	ctx := context.Background()

	goBook := newTestBook("5000000001", "The Go Programming Language",
		[]string{"Alan A. A. Donovan", "Brian W. Kernighan"})
	cBook := newTestBook("5000000002", "The C Programming Language",
		[]string{"Brian W. Kernighan", "Dennis Ritchie"})
	pyBook := newTestBook("5000000003", "Fluent Python", []string{"Luciano Ramalho"})
	require.NoError(t, repo.Create(ctx, goBook))
	require.NoError(t, repo.Create(ctx, cBook))
	require.NoError(t, repo.Create(ctx, pyBook))

	// 标题子串匹配
	books, err := repo.Search(ctx, &book.Filter{Title: "Programming"}, nil)
	require.NoError(t, err)
	assert.Len(t, books, 2)

	// 作者匹配作用于拼接后的作者列表
	books, err = repo.Search(ctx, &book.Filter{Author: "Ritchie"}, nil)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "The C Programming Language", books[0].Title)

	books, err = repo.Search(ctx, &book.Filter{Author: "Kernighan"}, nil)
	require.NoError(t, err)
	assert.Len(t, books, 2)

	// 空过滤器退化为无约束
	books, err = repo.Search(ctx, &book.Filter{}, nil)
	require.NoError(t, err)
	assert.Len(t, books, 3)

	// 无匹配返回空列表
	books, err = repo.Search(ctx, &book.Filter{Title: "Rust"}, nil)
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestBookRepository_Search_PublicationDateRange(t *testing.T) {
	repo := NewBookRepository(newTestDB(t))
	ctx := context.Background()

	old := newTestBook("6000000001", "Old", []string{"A"})
	old.PublicationDate = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := newTestBook("6000000002", "Recent", []string{"B"})
	recent.PublicationDate = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Create(ctx, recent))

	f := &book.Filter{
		PublicationDate: filter.NewRange(time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), filter.OpGe),
	}
	books, err := repo.Search(ctx, f, nil)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Recent", books[0].Title)
}

func TestBookRepository_Search_RatingsJoin(t *testing.T) {
	repo := NewBookRepository(newTestDB(t))
	ctx := context.Background()

	high := newTestBook("7000000001", "High", []string{"A"})
	high.Rating = &book.Rating{Average: 4.8, Votes: 2000, Reviews: 100}
	low := newTestBook("7000000002", "Low", []string{"B"})
	low.Rating = &book.Rating{Average: 3.1, Votes: 50, Reviews: 5}
	unrated := newTestBook("7000000003", "Unrated", []string{"C"})
	require.NoError(t, repo.Create(ctx, high))
	require.NoError(t, repo.Create(ctx, low))
	require.NoError(t, repo.Create(ctx, unrated))

	// ge包含相等,gt不包含
	f := &book.Filter{
		Ratings: &book.RatingsFilter{Average: filter.NewRange(4.8, filter.OpGe)},
	}
	books, err := repo.Search(ctx, f, nil)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "High", books[0].Title)

	f = &book.Filter{
		Ratings: &book.RatingsFilter{Average: filter.NewRange(4.8, filter.OpGt)},
	}
	books, err = repo.Search(ctx, f, nil)
	require.NoError(t, err)
	assert.Empty(t, books)

	// 评分条件命中时无评分的图书被JOIN排除
	f = &book.Filter{
		Ratings: &book.RatingsFilter{Votes: filter.NewRange(0, filter.OpGt)},
	}
	books, err = repo.Search(ctx, f, nil)
	require.NoError(t, err)
	assert.Len(t, books, 2)

	// 多条件AND组合
	f = &book.Filter{
		Title:   "High",
		Ratings: &book.RatingsFilter{Votes: filter.NewRange(1000, filter.OpGe)},
	}
	books, err = repo.Search(ctx, f, nil)
	require.NoError(t, err)
	require.Len(t, books, 1)
	require.NotNil(t, books[0].Rating)
	assert.Equal(t, 2000, books[0].Rating.Votes)
}

func TestBookRepository_Search_PaginatesJoinedQuery(t *testing.T) {
	repo := NewBookRepository(newTestDB(t))
	ctx := context.Background()

	for i, isbn := range []string{"8000000001", "8000000002", "8000000003"} {
		b := newTestBook(isbn, "Book", []string{"A"})
		b.Rating = &book.Rating{Average: 4.0 + float64(i)/10, Votes: 100, Reviews: 10}
		require.NoError(t, repo.Create(ctx, b))
	}

	f := &book.Filter{
		Ratings: &book.RatingsFilter{Average: filter.NewRange(4.0, filter.OpGe)},
	}
	p, err := paginator.New(1, 1)
	require.NoError(t, err)

	// 分页作用于JOIN后的结果集
	books, err := repo.Search(ctx, f, p)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "8000000002", books[0].ISBN)
}

func TestBookRepository_Update_Partial(t *testing.T) {
	repo := NewBookRepository(newTestDB(t))
	ctx := context.Background()

	b := newTestBook("9000000001", "Original", []string{"A"})
	b.Rating = &book.Rating{Average: 4.0, Votes: 100, Reviews: 10}
	require.NoError(t, repo.Create(ctx, b))

	newTitle := "Updated"
	newAverage := 4.5
	got, err := repo.Update(ctx, b.ID, &book.Patch{
		Title:  &newTitle,
		Rating: &book.RatingPatch{Average: &newAverage},
	})
	require.NoError(t, err)

	// 只有提供的字段被覆盖
	assert.Equal(t, "Updated", got.Title)
	assert.Equal(t, b.ISBN, got.ISBN)
	assert.Equal(t, b.Price, got.Price)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 4.5, got.Rating.Average)
	assert.Equal(t, 100, got.Rating.Votes)
}

func TestBookRepository_Update_RatingSkippedWithoutRecord(t *testing.T) {
	repo := NewBookRepository(newTestDB(t))
	ctx := context.Background()

	b := newTestBook("9000000002", "NoRating", []string{"A"})
	require.NoError(t, repo.Create(ctx, b))

	// 无评分记录时评分更新被跳过,不创建新记录
	newAverage := 4.5
	got, err := repo.Update(ctx, b.ID, &book.Patch{
		Rating: &book.RatingPatch{Average: &newAverage},
	})
	require.NoError(t, err)
	assert.Nil(t, got.Rating)
}

func TestBookRepository_Update_NotFound(t *testing.T) {
	repo := NewBookRepository(newTestDB(t))

	newTitle := "X"
	_, err := repo.Update(context.Background(), 999, &book.Patch{Title: &newTitle})
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestBookRepository_Delete_RemovesRatingFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookRepository(db)
	ctx := context.Background()

	b := newTestBook("9000000003", "ToDelete", []string{"A"})
	b.Rating = &book.Rating{Average: 4.0, Votes: 10, Reviews: 1}
	require.NoError(t, repo.Create(ctx, b))

	require.NoError(t, repo.Delete(ctx, b.ID))

	_, err := repo.FindByID(ctx, b.ID)
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	var count int64
	require.NoError(t, db.Model(&RatingModel{}).Where("book_id = ?", b.ID).Count(&count).Error)
	assert.Zero(t, count)

	// 重复删除返回不存在
	err = repo.Delete(ctx, b.ID)
	assert.ErrorIs(t, err, book.ErrBookNotFound)
}

func TestBookRepository_SetReserved(t *testing.T) {
	repo := NewBookRepository(newTestDB(t))
	ctx := context.Background()

	b1 := newTestBook("9000000004", "R1", []string{"A"})
	b2 := newTestBook("9000000005", "R2", []string{"B"})
	require.NoError(t, repo.Create(ctx, b1))
	require.NoError(t, repo.Create(ctx, b2))

	require.NoError(t, repo.SetReserved(ctx, []uint{b1.ID, b2.ID}, true))

	got, err := repo.FindByID(ctx, b1.ID)
	require.NoError(t, err)
	assert.True(t, got.Reserved)

	require.NoError(t, repo.SetReserved(ctx, []uint{b1.ID}, false))
	got, err = repo.FindByID(ctx, b1.ID)
	require.NoError(t, err)
	assert.False(t, got.Reserved)

	// 空ID列表是no-op
	require.NoError(t, repo.SetReserved(ctx, nil, true))
}
