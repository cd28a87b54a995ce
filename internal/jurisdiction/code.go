// Package jurisdiction owns the canonical jurisdiction codes and the
// normalization rules that turn free-text place names into them. Everything
// the resolution pipeline decides on flows through this package, so aliases
// are table entries here rather than string checks scattered across handlers.
package jurisdiction

// Code is the canonical lowercase identifier for a supported state or region.
// Equality is exact string match; values outside the closed set never leave
// this package.
type Code string

// Unknown is returned when a place name matches no supported jurisdiction.
const Unknown Code = ""

// Supported jurisdiction codes. One entry per state/metro region the content
// registry can serve.
const (
	AndhraPradesh    Code = "andhra_pradesh"
	Assam            Code = "assam"
	Bihar            Code = "bihar"
	Chhattisgarh     Code = "chhattisgarh"
	Delhi            Code = "delhi"
	Goa              Code = "goa"
	Gujarat          Code = "gujarat"
	Haryana          Code = "haryana"
	HimachalPradesh  Code = "himachal_pradesh"
	Jharkhand        Code = "jharkhand"
	Karnataka        Code = "karnataka"
	Kerala           Code = "kerala"
	MadhyaPradesh    Code = "madhya_pradesh"
	Maharashtra      Code = "maharashtra"
	Odisha           Code = "odisha"
	Punjab           Code = "punjab"
	Rajasthan        Code = "rajasthan"
	TamilNadu        Code = "tamil_nadu"
	Telangana        Code = "telangana"
	UttarPradesh     Code = "uttar_pradesh"
	Uttarakhand      Code = "uttarakhand"
	WestBengal       Code = "west_bengal"
)

// All lists every supported code in stable order.
func All() []Code {
	return []Code{
		AndhraPradesh, Assam, Bihar, Chhattisgarh, Delhi, Goa, Gujarat,
		Haryana, HimachalPradesh, Jharkhand, Karnataka, Kerala,
		MadhyaPradesh, Maharashtra, Odisha, Punjab, Rajasthan, TamilNadu,
		Telangana, UttarPradesh, Uttarakhand, WestBengal,
	}
}

// Valid reports whether c is a member of the closed code set.
func (c Code) Valid() bool {
	_, ok := codeSet[c]
	return ok
}

func (c Code) String() string {
	return string(c)
}

var codeSet = func() map[Code]struct{} {
	set := make(map[Code]struct{}, len(All()))
	for _, c := range All() {
		set[c] = struct{}{}
	}
	return set
}()
