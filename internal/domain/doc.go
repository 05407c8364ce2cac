// Package domain models country climate data files named after GADM
// administrative units, and the reference table that maps each unit to a
// dense surrogate identifier.
//
// # Data Source
//
// Climate extractions (CHIRPS, ERA5-Land, PERSIANN) are produced per GADM
// administrative unit as CSV files, one file per unit. The file name is the
// only place the unit is recorded, so it has to be parsed before the rows can
// be joined against other datasets.
//
// # Filename Convention
//
// GADM version 4.1.0 is written as the marker "v410". Country-level files
// carry no digit groups after the marker:
//
//	BGD_v410_CHIRPS_2020.csv
//
// Subnational files carry one numeric code per administrative level followed
// by the GID code version, each terminated by an underscore:
//
//	BGD_v410_3_1_CHIRPS_2020.csv        level 1: code 3, code version 1
//	BGD_v410_3_12_1_CHIRPS_2020.csv     level 2: codes 3, 12, code version 1
//	BGD_v410_3_12_4_2_CHIRPS_2020.csv   level 3: codes 3, 12, 4, code version 2
//
// A file at admin level L therefore has L+1 digit groups when L > 0 and none
// when L = 0. See [DigitGroups] and [LevelPattern].
//
// Parsing is token based (see [ExtractAdminCode]): the run of digit groups
// directly after the marker must have exactly the expected length, so asking
// for level 1 on a country-level file is an [ErrParse] rather than a
// partially-null code.
//
// # Country Codes
//
// The ISO 3166-1 alpha-3 country code precedes the marker ("BGD_v410").
// Checking it against the known-codes list is optional; see [CountryCode].
//
// # Admin Codes
//
// An [AdminCode] has four slots, one per level 0–3. A slot is either a code or
// null, and populated slots are contiguous from level 0. Country-level files
// resolve to {0, null, null, null} with code version "1".
//
// # Surrogate IDs
//
// The [ReferenceTable] holds every distinct (slots, code version) combination
// found in a corpus, sorted ascending on the four slots with nulls first and
// code version as the tie-break. The 0-based rank in that order is the unit's
// surrogate ID, written to outputs as "admin_unit_id". Rebuilding from the
// same set of files yields the same IDs.
package domain
