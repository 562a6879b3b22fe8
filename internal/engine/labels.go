package engine

import (
    "fmt"
    "sort"

    "github.com/iliyamo/venue-ticketing/internal/model"
)

// labels.go implements the deterministic center-out seat labeling used by
// Chinese theater seating charts: seat 1 and seat 2 flank the center
// aisle, odd numbers grow outward to the left, even numbers to the right.
// A label reads "<row+1>排<number>号".

// AssignLabels recomputes seat labels for the given rows, or for every
// row when rows is empty.  Labels are a pure function of the current seat
// statuses within each targeted row: enabled seats split into a left half
// (col ≤ floor((cols−1)/2)) receiving the odd sequence 1,3,5,… ordered by
// distance from the center-left boundary, and a right half receiving the
// even sequence 2,4,6,… ordered by distance from the center-right
// boundary.  DISABLED seats always end with a nil label.  After each row
// the advisory RowProgress cursor is set to the next unused odd/even
// numbers.
func AssignLabels(p *model.Project, rows ...int) {
    if len(rows) == 0 {
        rows = make([]int, p.Rows)
        for r := range rows {
            rows[r] = r
        }
    }
    for _, r := range rows {
        if r < 0 || r >= p.Rows {
            continue
        }
        labelRow(p, r)
    }
}

func labelRow(p *model.Project, row int) {
    centerLeft := (p.Cols - 1) / 2

    var left, right []*model.Seat
    for c := range p.Seats[row] {
        s := &p.Seats[row][c]
        if s.Status == model.SeatDisabled {
            s.SeatLabel = nil
            continue
        }
        if s.Col <= centerLeft {
            left = append(left, s)
        } else {
            right = append(right, s)
        }
    }

    // Left half: closest to the center aisle gets the smallest odd
    // number; ties break toward the larger column.
    sort.SliceStable(left, func(i, j int) bool {
        di, dj := centerLeft-left[i].Col, centerLeft-left[j].Col
        if di != dj {
            return di < dj
        }
        return left[i].Col > left[j].Col
    })
    // Right half mirrors it with the even numbers; ties break toward the
    // smaller column.
    centerRight := centerLeft + 1
    sort.SliceStable(right, func(i, j int) bool {
        di, dj := right[i].Col-centerRight, right[j].Col-centerRight
        if di != dj {
            return di < dj
        }
        return right[i].Col < right[j].Col
    })

    next := 1
    for _, s := range left {
        s.SeatLabel = labelFor(row, next)
        next += 2
    }
    leftNext := next

    next = 2
    for _, s := range right {
        s.SeatLabel = labelFor(row, next)
        next += 2
    }

    if p.RowProgress == nil {
        p.RowProgress = make(map[int]model.RowProgress)
    }
    p.RowProgress[row] = model.RowProgress{LeftNext: leftNext, RightNext: next}
}

func labelFor(row, number int) *string {
    l := fmt.Sprintf("%d排%d号", row+1, number)
    return &l
}

// labelNumber extracts the seat number from a label such as "3排5号".  It
// is used to order seats deterministically when sequence numbers are
// regenerated.  Seats without a parseable label sort by column instead,
// signalled by ok == false.
func labelNumber(s *model.Seat) (n int, ok bool) {
    if s.SeatLabel == nil {
        return 0, false
    }
    var row int
    if _, err := fmt.Sscanf(*s.SeatLabel, "%d排%d号", &row, &n); err != nil {
        return 0, false
    }
    return n, true
}
