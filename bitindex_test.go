package fqsim

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestZeroIndex(t *testing.T) {
	Convey("Given the compressed index of a pair", t, func() {
		Convey("It should open a zero slot at the target bit", func() {
			So(ZeroIndex(0b101, 0), ShouldEqual, uint64(0b1010))
			So(ZeroIndex(0b101, 1), ShouldEqual, uint64(0b1001))
			So(ZeroIndex(0b101, 2), ShouldEqual, uint64(0b1001))
			So(ZeroIndex(0b101, 3), ShouldEqual, uint64(0b0101))
		})

		Convey("It should set only the target bit for the one index", func() {
			So(OneIndex(0b101, 1), ShouldEqual, uint64(0b1011))
			So(OneIndex(0, 6), ShouldEqual, uint64(64))
		})

		Convey("It should handle the most significant qubit of a wide register", func() {
			const target = 61
			i := uint64(1)<<target - 1
			So(ZeroIndex(i, target), ShouldEqual, i)
			So(OneIndex(i, target), ShouldEqual, uint64(1)<<62-1)
		})
	})
}

func TestZeroIndexBijection(t *testing.T) {
	Convey("Given every target of a 6 qubit register", t, func() {
		const numQubits = 6
		half := uint64(1) << (numQubits - 1)

		for target := uint(0); target < numQubits; target++ {
			zeros := make(map[uint64]bool)
			ones := make(map[uint64]bool)

			for i := uint64(0); i < half; i++ {
				zeros[ZeroIndex(i, target)] = true
				ones[OneIndex(i, target)] = true
			}

			Convey(fmt.Sprintf("It should enumerate each cleared state exactly once for target %d", target), func() {
				So(zeros, ShouldHaveLength, int(half))
				So(ones, ShouldHaveLength, int(half))

				for k := range zeros {
					So(k&(1<<target) == 0, ShouldBeTrue)
					So(k, ShouldBeLessThan, uint64(1)<<numQubits)
				}
				for k := range ones {
					So(k&(1<<target) != 0, ShouldBeTrue)
					So(zeros[k&^(1<<target)], ShouldBeTrue)
				}
			})
		}
	})
}
